package main

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"golfwear-extractor/extractor"
	"golfwear-extractor/internal/assemble"
	"golfwear-extractor/internal/brands"
	"golfwear-extractor/internal/config"
	"golfwear-extractor/internal/title"
	"golfwear-extractor/internal/types"
)

// Server exposes the record pipeline over HTTP. Pipelines are built lazily
// per brand and reused.
type Server struct {
	settings *config.Settings
	registry *brands.Registry
	logger   types.Logger

	mu        sync.Mutex
	pipelines map[string]*extractor.Pipeline
}

// NewServer creates a new API server
func NewServer(settings *config.Settings, logger types.Logger) *Server {
	return &Server{
		settings:  settings,
		registry:  brands.Default(),
		logger:    logger,
		pipelines: make(map[string]*extractor.Pipeline),
	}
}

// Router returns the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/health", s.handleHealth)
	router.POST("/assemble", s.handleAssemble)
	router.POST("/title", s.handleTitle)
	return router
}

type assembleResponse struct {
	Record        types.AssembledRecord `json:"record"`
	Title         string                `json:"title"`
	TitleValid    bool                  `json:"titleValid"`
	TitleProblems []string              `json:"titleProblems"`
	Completeness  assemble.Completeness `json:"completeness"`
}

type titleResponse struct {
	Title    string   `json:"title"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}

// handleAssemble runs one raw record through the pipeline. ?brand= selects
// the brand config whose normalize rules apply.
func (s *Server) handleAssemble(c *gin.Context) {
	var raw types.RawScrapeRecord
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	pipeline, err := s.pipelineFor(strings.TrimSpace(c.Query("brand")))
	if err != nil {
		s.logger.Warnf("No pipeline for brand %q: %v", c.Query("brand"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, _ := pipeline.Process(c.Request.Context(), &raw)
	report := title.Validate(record.Title)

	fields := make(map[string]any, len(assemble.Keys))
	for k, v := range assemble.ToMap(record) {
		fields[k] = v
	}

	c.JSON(http.StatusOK, assembleResponse{
		Record:        record,
		Title:         record.Title,
		TitleValid:    report.Valid,
		TitleProblems: report.Problems,
		Completeness:  assemble.ValidateCompleteness(fields),
	})
}

func (s *Server) handleTitle(c *gin.Context) {
	var in title.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(in.TitleRaw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "titleRaw is required"})
		return
	}

	rule := title.NewRuleGenerator(s.registry, s.settings.DefaultSeason)
	t, err := title.FromSettings(s.settings.Title, rule, s.logger).Generate(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	report := title.Validate(t)
	c.JSON(http.StatusOK, titleResponse{Title: t, Valid: report.Valid, Problems: report.Problems})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "golfwear-api",
	})
}

// pipelineFor returns the cached pipeline of brand. A brand without a
// config file gets the default normalize rules.
func (s *Server) pipelineFor(brand string) (*extractor.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pipelines[brand]; ok {
		return p, nil
	}

	cfg := &config.BrandConfig{BrandID: brand, Brand: brand}
	if brand != "" {
		loaded, err := config.LoadBrand(s.settings.ConfigDir, brand)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
			s.logger.Debugf("No config for brand %s, using default normalize rules", brand)
		default:
			return nil, err
		}
	}
	if cfg.DefaultSeason == "" {
		cfg.DefaultSeason = s.settings.DefaultSeason
	}

	rule := title.NewRuleGenerator(s.registry, cfg.DefaultSeason)
	p, err := extractor.NewBrandPipeline(cfg, title.FromSettings(s.settings.Title, rule, s.logger), s.registry, s.logger)
	if err != nil {
		return nil, err
	}
	s.pipelines[brand] = p
	return p, nil
}
