// Package api exposes the platform over HTTP: reflection intake, feedback,
// explanation retrieval, history and insights.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/explain"
	"github.com/mirrorday/mirrorday-platform/internal/feedback"
	"github.com/mirrorday/mirrorday-platform/internal/insights"
	"github.com/mirrorday/mirrorday-platform/internal/reflection"
)

// SubmitService runs the generation pipeline and the feedback loop.
type SubmitService interface {
	Process(ctx context.Context, answers reflection.Answers) (*reflection.Result, error)
	ProcessFeedback(ctx context.Context, imageID, responseID uuid.UUID, rating feedback.Rating, comment string) (string, error)
}

// QueryStore serves read paths: explanations and history.
type QueryStore interface {
	GetExplanation(ctx context.Context, imageID uuid.UUID) (*explain.Result, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]reflection.HistoryEntry, error)
}

// InsightsService serves the weekly aggregate.
type InsightsService interface {
	WeeklySummary(ctx context.Context, userID uuid.UUID, now time.Time) (insights.Summary, error)
}

const defaultHistoryLimit = 30

// Server wires the HTTP routes to the pipeline and stores.
type Server struct {
	router   *gin.Engine
	service  SubmitService
	store    QueryStore
	insights InsightsService
	logger   *slog.Logger
}

// NewServer creates the HTTP server. imageDir is served statically under
// /api/images; pass "" to disable.
func NewServer(service SubmitService, store QueryStore, insightsService InsightsService, imageDir string, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:   router,
		service:  service,
		store:    store,
		insights: insightsService,
		logger:   logger,
	}

	router.POST("/api/submit", s.handleSubmit)
	router.POST("/api/feedback", s.handleFeedback)
	router.GET("/api/explanation", s.handleExplanation)
	router.GET("/api/history", s.handleHistory)
	router.GET("/api/insights", s.handleInsights)

	if imageDir != "" {
		router.Static("/api/images", imageDir)
	}

	return s
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server on the given port
func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("Starting API server", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) handleSubmit(c *gin.Context) {
	var answers reflection.Answers
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.service.Process(c.Request.Context(), answers)
	if err != nil {
		s.respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_id":              result.ImageID,
		"response_id":           result.ResponseID,
		"image_url":             result.ImageURL,
		"vibe":                  result.Vibe,
		"detection":             result.Detection,
		"remaining_generations": result.RemainingGenerations,
	})
}

func (s *Server) respondSubmitError(c *gin.Context, err error) {
	var limitErr *reflection.DailyLimitError
	switch {
	case errors.Is(err, reflection.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &limitErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":                 "You've already reflected today ✨ come back tomorrow.",
			"remaining_generations": 0,
			"next_available_at":     limitErr.NextAvailableAt.Format(time.RFC3339),
		})
	case errors.Is(err, reflection.ErrUnsafePrompt):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Content moderation failed. Please revise your reflection.",
			"type":  "moderation_error",
		})
	default:
		s.logger.Error("Submission failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type feedbackRequest struct {
	ImageID    string `json:"image_id"`
	ResponseID string `json:"response_id"`
	Rating     string `json:"rating"`
	Comment    string `json:"comment"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	imageID, err := uuid.Parse(req.ImageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image_id"})
		return
	}
	responseID, err := uuid.Parse(req.ResponseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid response_id"})
		return
	}
	if !feedback.ValidRating(req.Rating) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be 'yes', 'partially', or 'no'"})
		return
	}

	message, err := s.service.ProcessFeedback(c.Request.Context(), imageID, responseID,
		feedback.Rating(req.Rating), req.Comment)
	if err != nil {
		if errors.Is(err, reflection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		s.logger.Error("Feedback failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (s *Server) handleExplanation(c *gin.Context) {
	imageID, err := uuid.Parse(c.Query("image_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image_id"})
		return
	}

	result, err := s.store.GetExplanation(c.Request.Context(), imageID)
	if err != nil {
		if errors.Is(err, reflection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "explanation not found"})
			return
		}
		s.logger.Error("Explanation lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	entries, err := s.store.History(c.Request.Context(), userID, defaultHistoryLimit)
	if err != nil {
		s.logger.Error("History lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if entries == nil {
		entries = []reflection.HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) handleInsights(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	summary, err := s.insights.WeeklySummary(c.Request.Context(), userID, time.Now())
	if err != nil {
		s.logger.Error("Insights lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
