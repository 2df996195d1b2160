// Package api serves the taskboard record API over a store.Backend.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/wire"
)

// Server is the record API server.
type Server struct {
	backend store.Backend
	logger  *log.Logger
	token   string
	router  *gin.Engine
}

// Option customizes a Server.
type Option func(*Server)

// WithToken requires every request to carry "Authorization: Bearer <token>".
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// NewServer creates a server over backend.
func NewServer(backend store.Backend, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), s.logRequests())
	s.router = router

	api := router.Group(wire.BasePath)
	if s.token != "" {
		api.Use(s.requireToken())
	}

	tasks := api.Group("/" + wire.TableTasks)
	{
		tasks.GET("", s.listTasks)
		tasks.POST("", s.createTask)
		tasks.GET("/:id", s.getTask)
		tasks.PATCH("/:id", s.updateTask)
		tasks.DELETE("/:id", s.deleteTask)
		tasks.POST("/:id/complete", s.completeTask)
		tasks.POST("/:id/pending", s.reopenTask)
	}

	categories := api.Group("/" + wire.TableCategories)
	{
		categories.GET("", s.listCategories)
		categories.POST("", s.createCategory)
		categories.GET("/:id", s.getCategory)
		categories.PATCH("/:id", s.updateCategory)
		categories.DELETE("/:id", s.deleteCategory)
	}

	templates := api.Group("/" + wire.TableTemplates)
	{
		templates.GET("", s.listTemplates)
		templates.POST("", s.createTemplate)
		templates.GET("/:id", s.getTemplate)
		templates.PATCH("/:id", s.updateTemplate)
		templates.DELETE("/:id", s.deleteTemplate)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("record API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
