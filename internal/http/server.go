package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"docforge/internal/config"
	"docforge/internal/convert"
	"docforge/internal/workspace"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
}

func NewServer(cfg config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	ws, err := workspace.NewManager(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("init workspace manager: %w", err)
	}

	convert.ProbeTools(cfg.SofficeBin, cfg.GhostscriptBin, cfg.PdftoppmBin, cfg.WkhtmltopdfBin)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(MaxBodySize(cfg.MaxUploadBytes))
	engine.Use(CORS())

	api := NewAPI(cfg, ws, convert.NewRunner())
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg}, nil
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	return s.engine.Run(addr)
}
