package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/plenum/internal/config"
	"github.com/agenthands/plenum/internal/core"
	"github.com/agenthands/plenum/internal/core/model"
	"github.com/agenthands/plenum/internal/dataset"
)

// ErrOutsideDatasetsDir is returned for a directory import that would read
// outside the configured datasets directory.
var ErrOutsideDatasetsDir = errors.New("path escapes datasets directory")

type Server struct {
	Importer  *core.Importer
	Inspector *core.Inspector
	// DatasetsDir confines directory imports; request paths resolve under it.
	DatasetsDir string
	Files       config.FilesConfig
	Logger      *zap.Logger
}

func NewServer(imp *core.Importer, insp *core.Inspector, cfg config.ImportConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Importer:    imp,
		Inspector:   insp,
		DatasetsDir: cfg.DatasetsDir,
		Files:       cfg.Files,
		Logger:      logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Health)
	r.POST("/import", s.Import)
	r.POST("/import/dir", s.ImportDir)
	r.GET("/graph", s.Graph)
	r.GET("/stats", s.Stats)

	return r
}

func (s *Server) Health(c *gin.Context) {
	if err := s.Importer.Driver.VerifyConnectivity(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Import runs an import over a dataset posted as one JSON document.
func (s *Server) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ds, err := dataset.DecodeDataset(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.run(c, ds)
}

// ImportDirRequest names a directory relative to the server's datasets
// directory. An empty path imports the datasets directory itself.
type ImportDirRequest struct {
	DatasetsDir string `json:"datasets_dir"`
}

// ImportDir runs an import over dataset files below the configured datasets
// directory.
func (s *Server) ImportDir(c *gin.Context) {
	var req ImportDirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	dir, err := s.resolve(req.DatasetsDir)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ds, err := dataset.Load(dir, s.Files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.run(c, ds)
}

func (s *Server) resolve(rel string) (string, error) {
	if rel == "" {
		return s.DatasetsDir, nil
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDatasetsDir, rel)
	}
	return filepath.Join(s.DatasetsDir, rel), nil
}

func (s *Server) run(c *gin.Context, ds model.Dataset) {
	report, err := s.Importer.Run(c.Request.Context(), ds)
	if err != nil {
		s.Logger.Error("import failed", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrMissingKey) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) Graph(c *gin.Context) {
	triples, err := s.Inspector.Dump(c.Request.Context())
	if err != nil {
		s.Logger.Error("graph dump failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read graph"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": triples})
}

func (s *Server) Stats(c *gin.Context) {
	stats, err := s.Inspector.Counts(c.Request.Context())
	if err != nil {
		s.Logger.Error("graph stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read graph"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
