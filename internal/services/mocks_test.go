package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shelfwise/quiz-service/internal/models"
	"github.com/shelfwise/quiz-service/internal/repositories"
)

// MockRepository aggregates the per-store mocks; Transaction runs fn against
// the same mocks so expectations set on them cover transactional calls too.
type MockRepository struct {
	quiz    *MockQuizRepository
	attempt *MockAttemptRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		quiz:    new(MockQuizRepository),
		attempt: new(MockAttemptRepository),
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository       { return m.quiz }
func (m *MockRepository) Attempt() repositories.AttemptRepository { return m.attempt }

func (m *MockRepository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.quiz.AssertExpectations(t)
	m.attempt.AssertExpectations(t)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) GetCorrectAnswers(ctx context.Context, quizID uint) (map[uint]*models.CorrectAnswer, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]*models.CorrectAnswer), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByIDWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetActiveAttempt(ctx context.Context, quizID uint, takerID string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID, takerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CreateAnswers(ctx context.Context, answers []*models.StoredAnswer) error {
	args := m.Called(ctx, answers)
	return args.Error(0)
}
