package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fiscalhub/nfe-analyzer/internal/fiscal"
	"github.com/fiscalhub/nfe-analyzer/internal/model"
	"github.com/fiscalhub/nfe-analyzer/pkg/nfelib"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server. It owns the mutable regime
// configuration; the engine itself stays stateless and receives the regime
// as a value on each analysis.
type Server struct {
	config   *Config
	router   *gin.Engine
	analyzer *nfelib.Analyzer
	logger   *logrus.Logger

	regimeMu sync.RWMutex
	regime   model.RegimeConfig
}

// NewServer creates a new API server around the given analyzer.
func NewServer(config *Config, analyzer *nfelib.Analyzer, regime model.RegimeConfig, logger *logrus.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		config:   config,
		router:   router,
		analyzer: analyzer,
		logger:   logger,
		regime:   regime.OrDefault(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Analysis endpoints
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/upload", s.handleUpload)
		v1.POST("/parse", s.handleParse)

		// Regime configuration
		v1.GET("/regime", s.handleGetRegime)
		v1.PUT("/regime", s.handlePutRegime)

		// Simples Nacional rate inspection
		v1.POST("/simples-rate", s.handleSimplesRate)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) currentRegime() model.RegimeConfig {
	s.regimeMu.RLock()
	defer s.regimeMu.RUnlock()
	return s.regime
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := s.analyzer.AnalyzeWithRegime(ctx, body, s.currentRegime())
	if err != nil {
		writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponseFrom(result))
}

// handleUpload accepts one or more NFe XML files as multipart form data
// under the "file" field. Each file is analyzed independently: a rejected
// document never fails the rest of the batch.
func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	regime := s.currentRegime()
	response := UploadResponse{}
	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xml") {
			response.Rejected = append(response.Rejected, RejectedFile{
				File:  fh.Filename,
				Error: "not an XML file",
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			response.Rejected = append(response.Rejected, RejectedFile{File: fh.Filename, Error: "failed to open file"})
			continue
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.Rejected = append(response.Rejected, RejectedFile{File: fh.Filename, Error: "failed to read file"})
			continue
		}

		result, err := s.analyzer.AnalyzeWithRegime(ctx, content, regime)
		if err != nil {
			s.logger.WithField("file", fh.Filename).WithError(err).Warn("rejected uploaded document")
			response.Rejected = append(response.Rejected, RejectedFile{File: fh.Filename, Error: err.Error()})
			continue
		}

		response.Processed = append(response.Processed, ProcessedFile{
			File:     fh.Filename,
			Analysis: analyzeResponseFrom(result),
		})
	}

	c.JSON(http.StatusCreated, response)
}

func (s *Server) handleParse(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	inv, err := s.analyzer.ParseXML(ctx, strings.NewReader(string(body)))
	if err != nil {
		writeAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParseResponse{Invoice: inv})
}

func (s *Server) handleGetRegime(c *gin.Context) {
	c.JSON(http.StatusOK, s.currentRegime())
}

func (s *Server) handlePutRegime(c *gin.Context) {
	var req RegimeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rbt12 := decimal.NewFromFloat(req.RBT12)
	if !rbt12.IsPositive() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "rbt12 must be greater than zero"})
		return
	}

	annex := req.Annex
	if annex == "" {
		annex = model.AnnexI
	}

	s.regimeMu.Lock()
	s.regime = model.RegimeConfig{RBT12: rbt12, Annex: annex}
	updated := s.regime
	s.regimeMu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"rbt12": req.RBT12,
		"annex": annex,
	}).Info("regime configuration updated")

	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleSimplesRate(c *gin.Context) {
	var req SimplesRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rate, err := fiscal.SimplesRate(decimal.NewFromFloat(req.RBT12))
	if err != nil {
		var cfgErr *model.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SimplesRateResponse{
		RBT12:         req.RBT12,
		EffectiveRate: rate,
	})
}

// writeAnalysisError maps engine errors to HTTP statuses: structural
// document failures are unprocessable entities, everything else is a bad
// request.
func writeAnalysisError(c *gin.Context, err error) {
	var parseErr *model.ParseError
	if errors.As(err, &parseErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": parseErr.Error()})
		return
	}
	var cfgErr *model.ConfigError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func analyzeResponseFrom(result *fiscal.Result) AnalyzeResponse {
	resp := AnalyzeResponse{
		Invoice:    result.Invoice,
		LineErrors: make([]LineErrorOutput, 0, len(result.LineErrors)),
	}
	for _, le := range result.LineErrors {
		resp.LineErrors = append(resp.LineErrors, LineErrorOutput{
			Index:   le.Index,
			Code:    le.Code,
			NCM:     le.NCM,
			Message: le.Message,
		})
	}
	resp.Inconsistencies = len(result.Invoice.Inconsistencies())
	return resp
}
