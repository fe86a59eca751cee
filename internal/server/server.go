// Package server exposes the HTTP API.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KEO-GOATMAN/vinkelnagent/internal/agent"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/config"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/logger"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/metrics"
	"github.com/KEO-GOATMAN/vinkelnagent/internal/news"
)

// Pipeline is the agent surface the handlers drive.
type Pipeline interface {
	ProcessNewsTopic(ctx context.Context, input news.ProcessingInput) (*news.ProcessingResult, error)
	ProcessRSSFeeds(ctx context.Context) (*agent.MonitorResult, error)
}

// Server routes API requests to the processing pipeline.
type Server struct {
	cfg      *config.Config
	pipeline Pipeline
	router   *gin.Engine
}

func New(cfg *config.Config, pipeline Pipeline) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		router:   gin.Default(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.POST("/process_news_topic", s.handleProcessTopic)
	s.router.GET("/rss_monitor", s.handleRSSMonitor)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", s.handleMetrics)
}

// Router exposes the configured engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	logger.Info("Starting HTTP server", "port", s.cfg.Port)
	return s.router.Run(":" + s.cfg.Port)
}

func (s *Server) handleProcessTopic(c *gin.Context) {
	var input news.ProcessingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	if _, err := input.SearchQuery(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	result, err := s.pipeline.ProcessNewsTopic(c.Request.Context(), input)
	if err != nil {
		logger.Error("Topic processing failed", "error", err)
		metrics.Global.SetError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

func (s *Server) handleRSSMonitor(c *gin.Context) {
	result, err := s.pipeline.ProcessRSSFeeds(c.Request.Context())
	if err != nil {
		logger.Error("RSS monitoring failed", "error", err)
		metrics.Global.SetError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"items_found":     result.ItemsFound,
		"items_processed": result.ItemsProcessed,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	healthy := true

	if err := s.cfg.Validate(); err != nil {
		healthy = false
	}
	if !metrics.Global.Healthy() {
		healthy = false
	}

	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"healthy":              healthy,
		"wordpress_configured": s.cfg.WordPressConfigured(),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}
