package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xaenox/maeum/internal/classifier"
	"github.com/xaenox/maeum/internal/responder"
	"github.com/xaenox/maeum/internal/storage"
)

// Server exposes the chat, diary, community and sharing endpoints.
type Server struct {
	engine     *gin.Engine
	classifier classifier.Classifier
	responder  responder.Responder
	store      storage.Storage
	shares     storage.ShareStore
	logger     *zap.Logger
	now        func() time.Time
}

type Options struct {
	AllowOrigins []string
}

func NewServer(
	clf classifier.Classifier,
	resp responder.Responder,
	store storage.Storage,
	shares storage.ShareStore,
	opts Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:     gin.New(),
		classifier: clf,
		responder:  resp,
		store:      store,
		shares:     shares,
		logger:     logger,
		now:        time.Now,
	}
	s.setupMiddleware(opts)
	s.registerRoutes()
	return s
}

func (s *Server) setupMiddleware(opts Options) {
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader, emotionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	s.engine.Use(cors.New(corsConfig))
	s.engine.Use(requestLogger(s.logger))
	s.engine.Use(gin.Recovery())
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.responder.Mode()})
	})

	api := s.engine.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/diary-feedback", s.handleDiaryFeedback)

		api.GET("/diaries", s.handleListDiaries)
		api.GET("/diaries/:id", s.handleGetDiary)
		api.DELETE("/diaries/:id", s.handleDeleteDiary)
		api.GET("/stats", s.handleStats)

		api.GET("/posts", s.handleListPosts)
		api.POST("/posts", s.handleCreatePost)
		api.POST("/posts/:id/like", s.handleToggleLike)
		api.DELETE("/posts/:id", s.handleDeletePost)

		api.POST("/share-conversation", s.handleCreateShare)
		api.GET("/share-conversation", s.handleGetShare)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) fail(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		s.logger.Error(msg,
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (s *Server) storageError(c *gin.Context, msg string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.fail(c, http.StatusNotFound, msg, nil)
		return
	}
	s.fail(c, http.StatusInternalServerError, msg, err)
}
