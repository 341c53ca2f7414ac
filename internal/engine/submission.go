package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfwise/quiz-service/internal/backend"
)

// submit serializes the ledger and calls the backend. It must be called
// with the lock held and the state already set to StateSubmitting or
// StateExpiredSubmitting; the lock is released for the duration of the
// backend call so Teardown and accessors are never blocked on the network.
//
// On failure the ledger and attempt id are preserved so the submission can
// be retried: the machine returns to InProgress while time remains,
// otherwise it parks in Failed.
func (a *Attempt) submit(ctx context.Context) (*backend.Result, error) {
	req := a.buildSubmission()

	a.mu.Unlock()
	result, err := a.client.SubmitAttempt(ctx, req)
	a.mu.Lock()

	if a.tornDown {
		// The owning session is gone; drop the outcome either way.
		return nil, ErrTornDown
	}

	if err != nil {
		if a.timer.Remaining() > 0 {
			a.state = StateInProgress
			a.timer.Resume()
		} else {
			a.state = StateFailed
		}
		a.logger.Warn("attempt submission failed",
			"attempt_id", a.attemptID,
			"remaining_seconds", a.timer.Remaining(),
			"error", err)
		if errors.Is(err, backend.ErrSubmissionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", backend.ErrSubmissionFailed, err)
	}

	a.state = StateCompleted
	a.result = result

	a.logger.Info("attempt completed",
		"attempt_id", a.attemptID,
		"score", result.Score,
		"total_score", result.TotalScore,
		"is_passed", result.IsPassed)

	return result, nil
}

// buildSubmission is the one-shot transformation of the ledger into the
// backend's submission shape. Elapsed time is the full limit minus whatever
// the countdown still held at submit time.
func (a *Attempt) buildSubmission() *backend.SubmitAttemptRequest {
	return &backend.SubmitAttemptRequest{
		AttemptID:        a.attemptID,
		Answers:          a.ledger.ToSubmissionPayload(a.quiz.Questions),
		TimeSpentSeconds: a.quiz.TimeLimit*60 - a.timer.Remaining(),
	}
}
