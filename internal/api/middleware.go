package api

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/logging"
)

// SubjectHeader carries the caller's subject id. Authentication happens
// upstream; the header is trusted.
const SubjectHeader = "X-Subject-ID"

const traceIDKey = "trace_id"

// traceIDMiddleware tags each request with a trace id that is echoed in
// the response and attached to every log record of the request.
func traceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(traceIDKey, id)
		c.Writer.Header().Set("X-Trace-ID", id)
		ctx := logging.WithAttrs(c.Request.Context(), slog.String("trace_id", id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// subjectMiddleware moves the subject header into the request context.
func subjectMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(SubjectHeader)); id != "" {
			ctx := census.WithSubject(c.Request.Context(), id)
			ctx = logging.WithAttrs(ctx, slog.String("subject", id))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		logger.Log(c.Request.Context(), logLevel(status), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		)
	}
}
