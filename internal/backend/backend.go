// Package backend defines the contract between the quiz-attempt engine and
// whatever stores quizzes and grades submissions. The in-house service
// implements it directly; resthttp implements it against an upstream API.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/shelfwise/quiz-service/internal/models"
)

var (
	ErrQuizNotFound          = errors.New("quiz not found")
	ErrAttemptCreationFailed = errors.New("attempt could not be created")
	ErrSubmissionFailed      = errors.New("attempt submission failed")
)

type Client interface {
	// GetQuiz returns the quiz definition with ordered questions. Option
	// correctness is withheld until submission results come back.
	GetQuiz(ctx context.Context, quizID uint) (*Quiz, error)

	// ListQuizzes returns published quizzes matching the filters, for the
	// picker shown before an attempt starts.
	ListQuizzes(ctx context.Context, filters ListFilters) ([]*QuizSummary, int64, error)

	// StartAttempt creates a new attempt and returns its backend-issued id.
	StartAttempt(ctx context.Context, quizID uint, takerID string) (*AttemptTicket, error)

	// SubmitAttempt persists the answers, grades the attempt and returns
	// the scored result.
	SubmitAttempt(ctx context.Context, req *SubmitAttemptRequest) (*Result, error)
}

// ===== QUIZ DEFINITION (taker view) =====

type Quiz struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	TimeLimit    int        `json:"time_limit"` // minutes
	PassingScore int        `json:"passing_score"`
	Questions    []Question `json:"questions"`
}

type Question struct {
	ID      uint                `json:"id"`
	Text    string              `json:"text"`
	Type    models.QuestionType `json:"type"`
	Points  int                 `json:"points"`
	Options []Option            `json:"options,omitempty"`
}

// Option deliberately has no correctness flag.
type Option struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuizSummary struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Grade          string `json:"grade,omitempty"`
	TimeLimit      int    `json:"time_limit"`
	PassingScore   int    `json:"passing_score"`
	QuestionsCount int    `json:"questions_count"`
}

type ListFilters struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
	Search  string `json:"search"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

// ===== ATTEMPT =====

type AttemptTicket struct {
	AttemptID uint      `json:"attempt_id"`
	StartedAt time.Time `json:"started_at"`
}

type SubmitAttemptRequest struct {
	AttemptID        uint              `json:"attempt_id" validate:"required"`
	Answers          []SubmittedAnswer `json:"answers" validate:"required,dive"`
	TimeSpentSeconds int               `json:"time_spent_seconds" validate:"min=0"`
}

// SubmittedAnswer carries exactly one populated answer field per the
// question's type; the other two are null on the wire.
type SubmittedAnswer struct {
	QuestionID       uint    `json:"question_id" validate:"required"`
	SelectedOptionID *uint   `json:"selected_option_id"`
	TextAnswer       *string `json:"text_answer"`
	BooleanAnswer    *bool   `json:"boolean_answer"`
}

// ===== RESULT =====

type Result struct {
	AttemptID        uint           `json:"attempt_id"`
	QuizID           uint           `json:"quiz_id"`
	Score            float64        `json:"score"`
	TotalScore       float64        `json:"total_score"`
	Percentage       *float64       `json:"percentage,omitempty"`
	IsPassed         bool           `json:"is_passed"`
	TimeSpentSeconds int            `json:"time_spent_seconds"`
	CompletedAt      time.Time      `json:"completed_at"`
	Answers          []AnswerDetail `json:"answers"`
}

type AnswerDetail struct {
	QuestionID   uint                `json:"question_id"`
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`

	SelectedOptionID   *uint   `json:"selected_option_id"`
	SelectedOptionText *string `json:"selected_option_text"`
	TextAnswer         *string `json:"text_answer"`
	BooleanAnswer      *bool   `json:"boolean_answer"`

	IsCorrect    bool    `json:"is_correct"`
	PointsEarned float64 `json:"points_earned"`

	// Options with correctness flags, revealed post-grading.
	Options []ResultOption `json:"options,omitempty"`
}

type ResultOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}
