package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/quiz-service/internal/engine"
	"github.com/shelfwise/quiz-service/internal/sessions"
	"github.com/shelfwise/quiz-service/internal/utils"
)

// SessionHandler exposes live attempt sessions: start, answer, submit,
// retry, inspect and abandon.
type SessionHandler struct {
	BaseHandler
	manager *sessions.Manager
}

func NewSessionHandler(manager *sessions.Manager, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		manager:     manager,
	}
}

type createSessionRequest struct {
	QuizID  uint   `json:"quiz_id" binding:"required"`
	TakerID string `json:"taker_id" binding:"required"`
}

// CreateSession starts an attempt and returns the session with the quiz the
// taker will answer against.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating session", "quiz_id", req.QuizID, "taker_id", req.TakerID)

	session, err := h.manager.StartSession(c.Request.Context(), req.QuizID, req.TakerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	quiz, err := h.manager.Quiz(session.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	snapshot, err := h.manager.Snapshot(session.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": snapshot,
		"quiz":    quiz,
	})
}

// GetSession reports the session's current state, countdown included.
func (h *SessionHandler) GetSession(c *gin.Context) {
	snapshot, err := h.manager.Snapshot(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type answerRequest struct {
	SelectedOptionID *uint   `json:"selected_option_id"`
	TextAnswer       *string `json:"text_answer"`
	BooleanAnswer    *bool   `json:"boolean_answer"`
}

func (r *answerRequest) toValue() (engine.Value, bool) {
	set := 0
	var value engine.Value
	if r.SelectedOptionID != nil {
		set++
		value = engine.OptionValue(*r.SelectedOptionID)
	}
	if r.TextAnswer != nil {
		set++
		value = engine.TextValue(*r.TextAnswer)
	}
	if r.BooleanAnswer != nil {
		set++
		value = engine.BooleanValue(*r.BooleanAnswer)
	}
	return value, set == 1
}

// PutAnswer records an answer; later writes for the same question replace
// earlier ones.
func (h *SessionHandler) PutAnswer(c *gin.Context) {
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	value, ok := req.toValue()
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Exactly one answer field must be set",
		})
		return
	}

	if err := h.manager.Answer(c.Param("id"), questionID, value); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

type submitSessionRequest struct {
	Confirmed bool `json:"confirmed"`
}

// SubmitSession submits the attempt on the taker's initiative. The request
// must carry confirmed=true or it is rejected without touching the attempt.
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	var req submitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting session", "session_id", c.Param("id"), "confirmed", req.Confirmed)

	result, err := h.manager.Submit(c.Request.Context(), c.Param("id"), req.Confirmed)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RetrySession re-attempts a submission that failed after time expired.
func (h *SessionHandler) RetrySession(c *gin.Context) {
	h.LogRequest(c, "Retrying session submission", "session_id", c.Param("id"))

	result, err := h.manager.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteSession abandons the session; any in-flight result is dropped.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.manager.Abandon(c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
