package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/database"
)

// Store is the subset of the database used by the API.
type Store interface {
	database.TaskRepository
	database.SessionRepository
	database.TargetRepository
}

var _ Store = (*database.Database)(nil)

// Server is the local JSON API.
type Server struct {
	store    Store
	router   *gin.Engine
	logger   *zap.Logger
	now      func() time.Time
	onChange func(context.Context)
}

// Option configures a Server.
type Option func(*Server)

// WithNow overrides the clock used for "today" and filter ranges.
func WithNow(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// WithChangeHook registers fn to run after every successful write, e.g. to
// push a fresh snapshot to the mirrors.
func WithChangeHook(fn func(context.Context)) Option {
	return func(s *Server) { s.onChange = fn }
}

// NewServer creates the API server.
func NewServer(store Store, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	s := &Server{
		store:  store,
		router: router,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.POST("/tasks/:id/archive", s.handleArchiveTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.GET("/sessions", s.handleListSessions)
		api.POST("/sessions", s.handleCreateSession)
		api.GET("/target", s.handleGetTarget)
		api.PUT("/target", s.handleSetTarget)
		api.GET("/stats", s.handleStats)
	}
	return s
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func (s *Server) changed(c *gin.Context) {
	if s.onChange != nil {
		s.onChange(c.Request.Context())
	}
}
