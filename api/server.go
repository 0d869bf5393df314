package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"leadpipe/config"
	"leadpipe/services"
	"leadpipe/storage"
)

// Server exposes the lead data over HTTP for the dashboard frontend.
type Server struct {
	cfg       *config.Config
	store     *storage.PostgresStore
	skiptrace *services.SkipTraceService
	analysis  *services.AnalysisService
	logger    *logrus.Logger
	engine    *gin.Engine
}

func NewServer(cfg *config.Config, store *storage.PostgresStore, skiptrace *services.SkipTraceService, analysis *services.AnalysisService, logger *logrus.Logger) *Server {
	if !cfg.Flags.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		skiptrace: skiptrace,
		analysis:  analysis,
		logger:    logger,
		engine:    gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins: cfg.API.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/properties", s.handleListProperties)
		api.GET("/properties/:id", s.handleGetProperty)
		api.GET("/leads", s.handleListLeads)
		api.GET("/stats", s.handleStats)
		api.POST("/properties/:id/skiptrace", s.handleSkipTrace)
		if s.cfg.Flags.ScoringEnabled {
			api.POST("/properties/:id/analyze", s.handleAnalyze)
		}
	}
}

func (s *Server) Run() error {
	addr := ":" + s.cfg.API.Port
	s.logger.WithField("addr", addr).Info("API server listening")
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
