package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/rsham004/nz-electricity-chatbot/internal/usecases"
)

const shutdownTimeout = 5 * time.Second

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Question   string               `json:"question"`
	Transcript *entities.Transcript `json:"transcript,omitempty"`
}

// ChatResponse is returned by POST /api/chat
type ChatResponse struct {
	Answer     string              `json:"answer"`
	Intent     entities.Intent     `json:"intent"`
	Transcript entities.Transcript `json:"transcript"`
}

// HTTPServer exposes the chat bot over a JSON API
type HTTPServer struct {
	router  *gin.Engine
	useCase *usecases.GridUseCase
	logger  *log.Logger
}

// NewHTTPServer creates the HTTP API
func NewHTTPServer(useCase *usecases.GridUseCase) *HTTPServer {
	s := &HTTPServer{
		router:  gin.New(),
		useCase: useCase,
		logger:  log.Default().With("component", "http"),
	}
	s.setupRoutes()
	return s
}

func (s *HTTPServer) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())

	s.router.GET("/healthz", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/chat", s.chat)
		api.GET("/queries", s.recentQueries)
	}
}

// Handler returns the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *HTTPServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func (s *HTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	var transcript entities.Transcript
	if req.Transcript != nil {
		transcript = *req.Transcript
	}

	next, reply := s.useCase.Converse(c.Request.Context(), transcript, question)
	c.JSON(http.StatusOK, ChatResponse{
		Answer:     reply.Message(),
		Intent:     reply.Intent,
		Transcript: next,
	})
}

func (s *HTTPServer) recentQueries(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := s.useCase.RecentQueries(limit)
	if err != nil {
		s.logger.Error("Failed to read query log", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "query log unavailable"})
		return
	}
	if records == nil {
		records = []entities.QueryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"queries": records})
}
