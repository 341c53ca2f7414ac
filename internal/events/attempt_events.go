package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies attempt lifecycle events.
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptExpired   EventType = "attempt.expired"
)

// AttemptEvent is the envelope for all attempt lifecycle events.
type AttemptEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

func NewAttemptEvent(eventType EventType, data interface{}) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Event payloads

type AttemptStartedEvent struct {
	AttemptID uint      `json:"attempt_id"`
	QuizID    uint      `json:"quiz_id"`
	QuizTitle string    `json:"quiz_title"`
	TakerID   string    `json:"taker_id"`
	StartedAt time.Time `json:"started_at"`
	TimeLimit int       `json:"time_limit"` // seconds
}

type AttemptSubmittedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	TakerID     string    `json:"taker_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       float64   `json:"score"`
	TotalScore  float64   `json:"total_score"`
	IsPassed    bool      `json:"is_passed"`
	TimedOut    bool      `json:"timed_out"`
}

type AttemptExpiredEvent struct {
	AttemptID uint      `json:"attempt_id"`
	QuizID    uint      `json:"quiz_id"`
	TakerID   string    `json:"taker_id"`
	ExpiredAt time.Time `json:"expired_at"`
}
