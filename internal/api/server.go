// Package api serves the census engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
)

// Server routes HTTP requests to a census.Service. The service must be
// built with census.ContextIdentity so the subject header is honoured.
type Server struct {
	svc    *census.Service
	logger *slog.Logger
	engine *gin.Engine
}

// NewServer creates a Server and registers its routes.
func NewServer(svc *census.Service, logger *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger.With("source", "api"),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), traceIDMiddleware(), requestLogger(s.logger), subjectMiddleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/groupings", s.listGroupings)
	v1.GET("/groupings/:slug", s.getGrouping)
	v1.GET("/groupings/:slug/questions", s.groupingQuestions)
	v1.POST("/questions/select", s.selectQuestions)
	v1.PUT("/answers/:questionID", s.saveAnswer)

	c := v1.Group("/census")
	c.POST("/submit", s.submit)
	c.GET("/resume", s.resume)
	c.GET("/progress", s.progress)
	c.GET("/export", s.export)
	c.POST("/complete", s.complete)
	c.DELETE("", s.reset)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
