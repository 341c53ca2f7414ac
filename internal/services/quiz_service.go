package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/cache"
	"github.com/shelfwise/quiz-service/internal/models"
	"github.com/shelfwise/quiz-service/internal/repositories"
)

// QuizService serves taker-facing quiz definitions and the catalog listing.
type QuizService interface {
	Get(ctx context.Context, quizID uint) (*backend.Quiz, error)
	List(ctx context.Context, filters backend.ListFilters) ([]*backend.QuizSummary, int64, error)
}

type quizService struct {
	repo     repositories.Repository
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewQuizService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, logger *slog.Logger) QuizService {
	return &quizService{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func quizCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz:def:%d", quizID)
}

func (s *quizService) Get(ctx context.Context, quizID uint) (*backend.Quiz, error) {
	var cached backend.Quiz
	if err := s.cache.Get(ctx, quizCacheKey(quizID), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("quiz cache lookup failed", "quiz_id", quizID, "error", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.Status != models.QuizStatusPublished {
		return nil, ErrQuizNotPublished
	}

	view := toQuizView(quiz)

	if err := s.cache.Set(ctx, quizCacheKey(quizID), view, s.cacheTTL); err != nil {
		s.logger.Warn("quiz cache write failed", "quiz_id", quizID, "error", err)
	}

	return view, nil
}

func (s *quizService) List(ctx context.Context, filters backend.ListFilters) ([]*backend.QuizSummary, int64, error) {
	published := models.QuizStatusPublished
	quizzes, total, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{
		Status:  &published,
		Subject: filters.Subject,
		Grade:   filters.Grade,
		Search:  filters.Search,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	summaries := make([]*backend.QuizSummary, len(quizzes))
	for i, quiz := range quizzes {
		summaries[i] = toQuizSummary(quiz)
	}
	return summaries, total, nil
}

// toQuizView builds the taker-facing quiz definition. Option correctness is
// stripped here and nowhere else reads the stored flags pre-grading.
func toQuizView(quiz *models.Quiz) *backend.Quiz {
	view := &backend.Quiz{
		ID:           quiz.ID,
		Title:        quiz.Title,
		TimeLimit:    quiz.TimeLimit,
		PassingScore: quiz.PassingScore,
		Questions:    make([]backend.Question, len(quiz.Questions)),
	}
	if quiz.Description != nil {
		view.Description = *quiz.Description
	}

	for i, question := range quiz.Questions {
		q := backend.Question{
			ID:     question.ID,
			Text:   question.Text,
			Type:   question.Type,
			Points: question.Points,
		}
		if question.Type == models.MultipleChoice {
			q.Options = make([]backend.Option, len(question.Options))
			for j, option := range question.Options {
				q.Options[j] = backend.Option{ID: option.ID, Text: option.Text}
			}
		}
		view.Questions[i] = q
	}
	return view
}

func toQuizSummary(quiz *models.Quiz) *backend.QuizSummary {
	summary := &backend.QuizSummary{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Subject:        quiz.Subject,
		Grade:          quiz.Grade,
		TimeLimit:      quiz.TimeLimit,
		PassingScore:   quiz.PassingScore,
		QuestionsCount: quiz.QuestionsCount,
	}
	if quiz.Description != nil {
		summary.Description = *quiz.Description
	}
	return summary
}
