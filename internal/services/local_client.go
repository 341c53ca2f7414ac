package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfwise/quiz-service/internal/backend"
)

// localClient adapts the in-house services to the backend.Client contract,
// mapping service sentinels onto the wire-level errors the engine knows.
type localClient struct {
	quizzes  QuizService
	attempts AttemptService
}

func NewLocalClient(quizzes QuizService, attempts AttemptService) backend.Client {
	return &localClient{quizzes: quizzes, attempts: attempts}
}

func (c *localClient) GetQuiz(ctx context.Context, quizID uint) (*backend.Quiz, error) {
	quiz, err := c.quizzes.Get(ctx, quizID)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) || errors.Is(err, ErrQuizNotPublished) {
			return nil, fmt.Errorf("%w: quiz %d", backend.ErrQuizNotFound, quizID)
		}
		return nil, err
	}
	return quiz, nil
}

func (c *localClient) ListQuizzes(ctx context.Context, filters backend.ListFilters) ([]*backend.QuizSummary, int64, error) {
	return c.quizzes.List(ctx, filters)
}

func (c *localClient) StartAttempt(ctx context.Context, quizID uint, takerID string) (*backend.AttemptTicket, error) {
	ticket, err := c.attempts.Start(ctx, quizID, takerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuizNotFound), errors.Is(err, ErrQuizNotPublished):
			return nil, fmt.Errorf("%w: quiz %d", backend.ErrQuizNotFound, quizID)
		case errors.Is(err, ErrQuizHasNoQuestions), errors.Is(err, ErrAttemptAlreadyActive):
			return nil, fmt.Errorf("%w: %v", backend.ErrAttemptCreationFailed, err)
		}
		return nil, err
	}
	return ticket, nil
}

func (c *localClient) SubmitAttempt(ctx context.Context, req *backend.SubmitAttemptRequest) (*backend.Result, error) {
	result, err := c.attempts.Submit(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAttemptNotFound),
			errors.Is(err, ErrAttemptAlreadySubmitted),
			errors.Is(err, ErrValidationFailed):
			return nil, fmt.Errorf("%w: %v", backend.ErrSubmissionFailed, err)
		}
		return nil, err
	}
	return result, nil
}
