package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/utils"
)

// QuizHandler serves the published quiz catalog and the raw attempt
// endpoints. It speaks backend.Client, so the same routes work whether
// storage is the local postgres services or an upstream API.
type QuizHandler struct {
	BaseHandler
	client backend.Client
}

func NewQuizHandler(client backend.Client, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		client:      client,
	}
}

// ListQuizzes returns published quizzes matching the query filters.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := backend.ListFilters{
		Subject: c.Query("subject"),
		Grade:   c.Query("grade"),
		Search:  c.Query("search"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}

	summaries, total, err := h.client.ListQuizzes(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": summaries,
		"total": total,
	})
}

// GetQuiz returns the taker view of one published quiz.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.client.GetQuiz(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

type startAttemptRequest struct {
	TakerID string `json:"taker_id" binding:"required"`
}

// StartAttempt creates a server-side attempt for a quiz.
func (h *QuizHandler) StartAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req startAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting attempt", "quiz_id", id, "taker_id", req.TakerID)

	ticket, err := h.client.StartAttempt(c.Request.Context(), id, req.TakerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// SubmitAttempt grades a one-shot submission for an attempt.
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req backend.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.AttemptID = id

	h.LogRequest(c, "Submitting attempt", "attempt_id", id, "answers_count", len(req.Answers))

	result, err := h.client.SubmitAttempt(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
