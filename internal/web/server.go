package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/database"
	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/internal/metrics"
	"github.com/openbob/openbob/internal/tracker"
)

type Server struct {
	config  *config.Config
	handler *Handler
	router  *gin.Engine
	server  *http.Server
}

// NewServer wires the API over a live accumulator. repo and m may be nil, in
// which case the journal routes and /metrics answer 503.
func NewServer(cfg *config.Config, acc *tracker.Accumulator, repo *database.Repository, m *metrics.Metrics, customPort int) *Server {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(cors())

	handler := NewHandler(cfg, acc, repo, m)
	handler.SetupRoutes(router)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		config:  cfg,
		handler: handler,
		router:  router,
		server:  httpServer,
	}
}

// Start blocks serving until Shutdown
func (s *Server) Start() error {
	logger.Infof("Starting web server on http://%s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down web server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}

// Router exposes the engine for in-process requests
func (s *Server) Router() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("web: %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
