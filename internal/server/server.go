// Package server exposes designs and circuit analysis over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edp1096/toy-schematic/internal/config"
	"github.com/edp1096/toy-schematic/pkg/store"
)

type Server struct {
	Engine  *gin.Engine
	Designs *Designs
	Metrics *Metrics
}

// New wires the router. The gin mode is process wide and is left to the
// caller.
func New(cfg config.Config, st *store.Store, logger *slog.Logger) *Server {
	metrics := NewMetrics()
	designs := NewDesigns(st, cfg.Workspace.HistoryLimit, logger, metrics)
	handlers := NewHandlers(designs, cfg.Analysis, metrics, logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(logger), metrics.Middleware())

	engine.GET("/health", handlers.Health)
	engine.GET("/metrics", metrics.Handler())
	RegisterRoutes(engine.Group("/v1"), handlers)

	return &Server{Engine: engine, Designs: designs, Metrics: metrics}
}

func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// RequestLogger logs one line per request at a level chosen by status.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelDebug
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
