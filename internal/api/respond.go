package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	TraceID string `json:"traceId,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Code:    http.StatusOK,
		TraceID: traceID(c),
		Data:    data,
	})
}

func respondError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// handleServiceError maps census errors onto HTTP statuses.
func (s *Server) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, census.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, census.ErrNoSubject):
		respondError(c, http.StatusUnauthorized, "missing "+SubjectHeader+" header")
	case errors.Is(err, census.ErrGroupingLocked):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, census.ErrRetryable):
		s.logger.WarnContext(c.Request.Context(), "transient failure", "error", err)
		c.Header("Retry-After", "1")
		respondError(c, http.StatusServiceUnavailable, census.ErrRetryable.Error())
	default:
		s.logger.ErrorContext(c.Request.Context(), "request failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func logLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
