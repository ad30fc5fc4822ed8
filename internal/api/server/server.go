package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"audio-table/internal/api/handlers"
	"audio-table/internal/api/middleware"
	"audio-table/internal/app/catalog"
	"audio-table/internal/app/store"
	"audio-table/internal/app/transcribe"
	"audio-table/internal/auth"
	"audio-table/internal/config"
)

// Server is the HTTP server for the audio table API.
type Server struct {
	config     config.ServerConfig
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer assembles the router, middleware chain and endpoint handlers.
func NewServer(
	cfg *config.Config,
	verifier auth.SessionVerifier,
	catalogService *catalog.Service,
	pipeline *transcribe.Pipeline,
	blobStore store.BlobStore,
	logger *zap.Logger,
) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	httpMetrics := middleware.NewHTTPMetrics(registry)

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(httpMetrics.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	blobsHandler := handlers.NewBlobsHandler(catalogService, logger)
	uploadHandler := handlers.NewUploadHandler(blobStore, cfg.Minio.PresignExpiry, logger)
	transcribeHandler := handlers.NewTranscribeHandler(pipeline, logger)
	deleteHandler := handlers.NewDeleteHandler(blobStore, logger)

	// Every data-returning or mutating endpoint sits behind the session gate.
	api := router.Group("/api")
	api.Use(middleware.Auth(verifier))
	{
		api.GET("/blobs", blobsHandler.List)
		api.POST("/blobs/delete", deleteHandler.DeleteByURL)
		api.POST("/upload", uploadHandler.Authorize)
		api.POST("/transcribe", transcribeHandler.Transcribe)
		api.DELETE("/delete", deleteHandler.DeleteByPathname)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		config:     cfg.Server,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		zap.String("address", s.httpServer.Addr),
		zap.String("environment", s.config.Environment),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing).
func (s *Server) Router() *gin.Engine {
	return s.router
}
