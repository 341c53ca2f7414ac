package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "InProgress"
	AttemptStatusSubmitted  AttemptStatus = "Submitted"
	AttemptStatusTimedOut   AttemptStatus = "TimedOut"
)

type AttemptEndReason string

const (
	AttemptEndReasonManual  AttemptEndReason = "manual"
	AttemptEndReasonTimeout AttemptEndReason = "timeout"
)

type QuizAttempt struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	QuizID    uint          `json:"quiz_id" gorm:"not null;index"`
	TakerID   string        `json:"taker_id" gorm:"not null;size:100;index"`
	Status    AttemptStatus `json:"status" gorm:"not null;default:InProgress;index"`
	TimeLimit int           `json:"time_limit"` // seconds

	StartedAt   time.Time         `json:"started_at" gorm:"not null"`
	EndTime     *time.Time        `json:"end_time"` // StartedAt + TimeLimit
	SubmittedAt *time.Time        `json:"submitted_at"`
	EndReason   *AttemptEndReason `json:"end_reason"`

	// Grading outcome, populated on submit
	Score      *float64 `json:"score"`
	TotalScore *float64 `json:"total_score"`
	Percentage *float64 `json:"percentage"`
	IsPassed   *bool    `json:"is_passed"`
	TimeSpent  *int     `json:"time_spent"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    Quiz           `json:"quiz" gorm:"foreignKey:QuizID"`
	Answers []StoredAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

// StoredAnswer is one persisted answer record for an attempt. AnswerData is
// the raw submitted value; exactly one of its three fields is populated,
// matching the question's type.
type StoredAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index:idx_attempt_question,unique"`
	QuestionID uint `json:"question_id" gorm:"not null;index:idx_attempt_question,unique"`

	AnswerData datatypes.JSON `json:"answer_data" gorm:"type:jsonb"` // AnswerPayload

	// Grading outcome per answer
	IsCorrect    *bool    `json:"is_correct"`
	PointsEarned *float64 `json:"points_earned"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerPayload is the JSON shape stored in StoredAnswer.AnswerData and
// carried on the submission wire. At most one field is non-nil.
type AnswerPayload struct {
	SelectedOptionID *uint   `json:"selected_option_id"`
	TextAnswer       *string `json:"text_answer"`
	BooleanAnswer    *bool   `json:"boolean_answer"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (StoredAnswer) TableName() string {
	return "attempt_answers"
}
