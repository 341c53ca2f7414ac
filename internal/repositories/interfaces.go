package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shelfwise/quiz-service/internal/models"
)

// Repository aggregates access to all stores. Implementations must be safe
// for concurrent use.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository

	// Transaction runs fn against a transactional view of the repository,
	// committing when fn returns nil and rolling back otherwise.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)

	// GetCorrectAnswers returns the expected answers for TrueFalse and
	// FillInTheBlank questions of a quiz, keyed by question id.
	GetCorrectAnswers(ctx context.Context, quizID uint) (map[uint]*models.CorrectAnswer, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error)
	Update(ctx context.Context, attempt *models.QuizAttempt) error

	// GetActiveAttempt returns the taker's InProgress attempt for a quiz.
	GetActiveAttempt(ctx context.Context, quizID uint, takerID string) (*models.QuizAttempt, error)

	CreateAnswers(ctx context.Context, answers []*models.StoredAnswer) error
}

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	Subject   string             `json:"subject"`
	Grade     string             `json:"grade"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
