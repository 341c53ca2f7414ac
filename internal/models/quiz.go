package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "Draft"
	QuizStatusPublished QuizStatus = "Published"
	QuizStatusArchived  QuizStatus = "Archived"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MultipleChoice"
	TrueFalse      QuestionType = "TrueFalse"
	FillInTheBlank QuestionType = "FillInTheBlank"
)

type Quiz struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description  *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Subject      string     `json:"subject" gorm:"size:100;index"`
	Grade        string     `json:"grade" gorm:"size:50;index"`
	TimeLimit    int        `json:"time_limit" gorm:"not null" validate:"required,min=1,max=300"` // minutes
	PassingScore int        `json:"passing_score" gorm:"not null" validate:"required,min=0,max=100"`
	Status       QuizStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`

	// Metadata
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
	TotalPoints    int `json:"total_points" gorm:"-"`
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index"`
	Text   string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Type   QuestionType `json:"type" gorm:"not null" validate:"required,question_type"`
	Points int          `json:"points" gorm:"default:1" validate:"min=1,max=100"`
	Order  int          `json:"order" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations. Only MultipleChoice questions carry options.
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	// IsCorrect is never serialized to quiz takers before their attempt is
	// graded; the taker-facing DTO lives in the backend package.
	IsCorrect bool `json:"is_correct" gorm:"not null;default:false"`
	Order     int  `json:"order" gorm:"not null;default:0"`
}

// CorrectAnswer holds the expected answer for non-option question types.
type CorrectAnswer struct {
	QuestionID    uint    `json:"question_id" gorm:"primaryKey"`
	BooleanAnswer *bool   `json:"boolean_answer"`
	TextAnswer    *string `json:"text_answer" gorm:"type:text"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "question_options"
}

func (CorrectAnswer) TableName() string {
	return "question_correct_answers"
}
