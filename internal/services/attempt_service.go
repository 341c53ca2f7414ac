package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/events"
	"github.com/shelfwise/quiz-service/internal/models"
	"github.com/shelfwise/quiz-service/internal/repositories"
	"github.com/shelfwise/quiz-service/internal/utils"
)

// AttemptService owns the server side of an attempt: creation against the
// stored quiz, and grading of the one-shot submission.
type AttemptService interface {
	Start(ctx context.Context, quizID uint, takerID string) (*backend.AttemptTicket, error)
	Submit(ctx context.Context, req *backend.SubmitAttemptRequest) (*backend.Result, error)
}

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *attemptService) Start(ctx context.Context, quizID uint, takerID string) (*backend.AttemptTicket, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", quizID, "taker_id", takerID)

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
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizHasNoQuestions
	}

	// One active attempt per taker and quiz. An expired leftover is closed
	// out first so a fresh attempt can start.
	current, err := s.repo.Attempt().GetActiveAttempt(ctx, quizID, takerID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}
	if current != nil {
		if current.EndTime != nil && time.Now().After(*current.EndTime) {
			if err := s.expireAttempt(ctx, current); err != nil {
				s.logger.Error("Failed to expire stale attempt", "attempt_id", current.ID, "error", err)
			}
		} else {
			return nil, ErrAttemptAlreadyActive
		}
	}

	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		TakerID:   takerID,
		Status:    models.AttemptStatusInProgress,
		StartedAt: time.Now(),
		TimeLimit: quiz.TimeLimit * 60, // minutes to seconds
	}
	endTime := attempt.StartedAt.Add(time.Duration(attempt.TimeLimit) * time.Second)
	attempt.EndTime = &endTime

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.publish(ctx, events.NewAttemptEvent(events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID: attempt.ID,
		QuizID:    quizID,
		QuizTitle: quiz.Title,
		TakerID:   takerID,
		StartedAt: attempt.StartedAt,
		TimeLimit: attempt.TimeLimit,
	}))

	s.logger.Info("Quiz attempt started", "attempt_id", attempt.ID, "quiz_id", quizID)

	return &backend.AttemptTicket{
		AttemptID: attempt.ID,
		StartedAt: attempt.StartedAt,
	}, nil
}

func (s *attemptService) Submit(ctx context.Context, req *backend.SubmitAttemptRequest) (*backend.Result, error) {
	s.logger.Info("Submitting quiz attempt",
		"attempt_id", req.AttemptID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, req.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.Status != models.AttemptStatusInProgress {
		if attempt.Status == models.AttemptStatusTimedOut {
			return nil, ErrAttemptTimeExpired
		}
		return nil, ErrAttemptAlreadySubmitted
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz for grading: %w", err)
	}
	correctAnswers, err := s.repo.Quiz().GetCorrectAnswers(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get correct answers: %w", err)
	}

	graded, err := gradeSubmission(quiz, correctAnswers, req.Answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	timedOut := attempt.EndTime != nil && now.After(*attempt.EndTime) ||
		req.TimeSpentSeconds >= attempt.TimeLimit

	attempt.SubmittedAt = &now
	attempt.TimeSpent = &req.TimeSpentSeconds
	attempt.Score = &graded.score
	attempt.TotalScore = &graded.totalScore
	percentage := graded.percentage()
	attempt.Percentage = &percentage
	isPassed := percentage >= float64(quiz.PassingScore)
	attempt.IsPassed = &isPassed

	reason := models.AttemptEndReasonManual
	attempt.Status = models.AttemptStatusSubmitted
	if timedOut {
		reason = models.AttemptEndReasonTimeout
		attempt.Status = models.AttemptStatusTimedOut
	}
	attempt.EndReason = &reason

	for _, answer := range graded.stored {
		answer.AttemptID = attempt.ID
	}

	err = s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().CreateAnswers(ctx, graded.stored); err != nil {
			return fmt.Errorf("failed to store answers: %w", err)
		}
		if err := tx.Attempt().Update(ctx, attempt); err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewAttemptEvent(events.EventAttemptSubmitted, events.AttemptSubmittedEvent{
		AttemptID:   attempt.ID,
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		TakerID:     attempt.TakerID,
		SubmittedAt: now,
		Score:       graded.score,
		TotalScore:  graded.totalScore,
		IsPassed:    isPassed,
		TimedOut:    timedOut,
	}))

	s.logger.Info("Quiz attempt submitted",
		"attempt_id", attempt.ID,
		"score", graded.score,
		"total_score", graded.totalScore,
		"is_passed", isPassed)

	return &backend.Result{
		AttemptID:        attempt.ID,
		QuizID:           quiz.ID,
		Score:            graded.score,
		TotalScore:       graded.totalScore,
		Percentage:       &percentage,
		IsPassed:         isPassed,
		TimeSpentSeconds: req.TimeSpentSeconds,
		CompletedAt:      now,
		Answers:          graded.details,
	}, nil
}

// expireAttempt closes out an attempt whose deadline passed without a
// submission arriving.
func (s *attemptService) expireAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	now := time.Now()
	reason := models.AttemptEndReasonTimeout
	attempt.Status = models.AttemptStatusTimedOut
	attempt.SubmittedAt = &now
	attempt.EndReason = &reason

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return fmt.Errorf("failed to update expired attempt: %w", err)
	}

	s.publish(ctx, events.NewAttemptEvent(events.EventAttemptExpired, events.AttemptExpiredEvent{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		TakerID:   attempt.TakerID,
		ExpiredAt: now,
	}))
	return nil
}

// publish is best-effort; the attempt outcome never depends on the broker.
func (s *attemptService) publish(ctx context.Context, event *events.AttemptEvent) {
	if err := s.publisher.PublishAttemptEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt event",
			"event_type", event.Type,
			"error", err)
	}
}
