package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yt-export/internal/models"
	"github.com/yt-export/internal/pipeline"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Runner executes one channel export
type Runner interface {
	Run(ctx context.Context, handle string) (*pipeline.Result, error)
}

// History lists recorded export runs
type History interface {
	ListRuns(limit int) ([]models.ExportRun, error)
}

// Server represents the API server
type Server struct {
	router  *gin.Engine
	runner  Runner
	history History
	logger  *zap.SugaredLogger

	// runs are serialized; the pipeline never executes concurrently
	mu sync.Mutex
}

type exportRequest struct {
	Handle string `json:"handle" binding:"required"`
}

type stageFailure struct {
	Stage   string `json:"stage"`
	VideoID string `json:"videoId,omitempty"`
	Error   string `json:"error"`
}

type exportResponse struct {
	Handle       string         `json:"handle"`
	ChannelID    string         `json:"channelId"`
	VideoCount   int            `json:"videoCount"`
	CommentCount int            `json:"commentCount"`
	FilePath     string         `json:"filePath,omitempty"`
	Exported     bool           `json:"exported"`
	Failures     []stageFailure `json:"failures"`
}

// NewServer creates a new API server. history may be nil when export history
// is disabled.
func NewServer(runner Runner, history History, logger *zap.SugaredLogger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server := &Server{
		router:  router,
		runner:  runner,
		history: history,
		logger:  logger,
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all the routes for the server
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	s.router.POST("/exports", s.createExport)
	s.router.GET("/exports", s.listExports)
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// createExport runs the pipeline for the requested handle
func (s *Server) createExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}

	handle := NormalizeHandle(req.Handle)
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle is required"})
		return
	}

	s.mu.Lock()
	result, err := s.runner.Run(c.Request.Context(), req.Handle)
	s.mu.Unlock()

	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrChannelNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newExportResponse(result))
}

func newExportResponse(result *pipeline.Result) exportResponse {
	resp := exportResponse{
		Handle:       result.Handle,
		ChannelID:    result.ChannelID,
		VideoCount:   len(result.Videos),
		CommentCount: len(result.Comments),
		FilePath:     result.FilePath,
		Exported:     result.Exported(),
		Failures:     make([]stageFailure, 0, len(result.Failures)),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, stageFailure{
			Stage:   f.Stage,
			VideoID: f.VideoID,
			Error:   f.Err.Error(),
		})
	}
	return resp
}

// listExports returns recorded export runs, newest first
func (s *Server) listExports(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": models.ErrHistoryDisabled.Error()})
		return
	}

	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	runs, err := s.history.ListRuns(limit)
	if err != nil {
		s.logger.Errorf("Failed to list export runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runs)
}

// Start starts the server on the specified port
func (s *Server) Start(port string) error {
	s.logger.Infof("Server starting on port %s", port)
	return s.router.Run(":" + port)
}
