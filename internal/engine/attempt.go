// Package engine implements the timed quiz-attempt lifecycle: quiz intake,
// answering against a countdown, manual or expiry-forced submission, and the
// scored result. It talks to storage only through backend.Client.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shelfwise/quiz-service/internal/backend"
)

type State string

const (
	StateNotStarted        State = "NotStarted"
	StateInProgress        State = "InProgress"
	StateSubmitting        State = "Submitting"
	StateExpiredSubmitting State = "ExpiredSubmitting"
	StateCompleted         State = "Completed"
	StateFailed            State = "Failed"
)

// Attempt is the state machine for one taker's run through one quiz. It is
// the sole authority on whether the ledger or timer may be mutated. Methods
// are safe for concurrent use; the backend is never called under the lock.
type Attempt struct {
	mu sync.Mutex

	client backend.Client
	logger *slog.Logger

	takerID string
	state   State

	quiz      *backend.Quiz
	attemptID uint
	ledger    *Ledger
	timer     *Timer

	expiryFired bool
	tornDown    bool
	result      *backend.Result
}

func NewAttempt(client backend.Client, logger *slog.Logger, takerID string) *Attempt {
	return &Attempt{
		client:  client,
		logger:  logger,
		takerID: takerID,
		state:   StateNotStarted,
	}
}

// Start fetches the quiz definition and requests a new attempt from the
// backend. Quizzes without questions are rejected with ErrEmptyQuiz and no
// attempt state is left behind.
func (a *Attempt) Start(ctx context.Context, quizID uint) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown {
		return ErrTornDown
	}
	if a.state != StateNotStarted {
		return ErrAlreadyStarted
	}

	quiz, err := a.client.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if len(quiz.Questions) == 0 {
		return ErrEmptyQuiz
	}

	ticket, err := a.client.StartAttempt(ctx, quizID, a.takerID)
	if err != nil {
		return err
	}

	a.quiz = quiz
	a.attemptID = ticket.AttemptID
	a.ledger = NewLedger(quiz.Questions)
	a.timer = NewTimer(quiz.TimeLimit*60, nil)
	a.state = StateInProgress

	a.logger.Info("attempt started",
		"attempt_id", a.attemptID,
		"quiz_id", quizID,
		"taker_id", a.takerID,
		"time_limit_seconds", quiz.TimeLimit*60)

	return nil
}

// SetAnswer records the taker's current answer for a question. Valid only
// while the attempt is in progress; writes are last-write-wins.
func (a *Attempt) SetAnswer(questionID uint, value Value) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown || a.state != StateInProgress {
		return ErrNotInProgress
	}
	return a.ledger.Set(questionID, value)
}

// RequestSubmit submits the attempt on the taker's initiative. The caller
// must pass an explicit confirm signal; an unconfirmed request is rejected
// so answers are never lost to an accidental click.
func (a *Attempt) RequestSubmit(ctx context.Context, confirmed bool) (*backend.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown || a.state != StateInProgress {
		return nil, ErrNotInProgress
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	a.timer.Stop()
	a.state = StateSubmitting
	return a.submit(ctx)
}

// Tick advances the countdown by one second. When the countdown reaches
// zero the attempt transitions to ExpiredSubmitting and submits exactly
// once, bypassing the confirmation gate; further ticks are no-ops.
func (a *Attempt) Tick(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown || a.state != StateInProgress {
		return
	}

	a.timer.Tick()
	if !a.timer.Expired() || a.expiryFired {
		return
	}
	a.expiryFired = true
	a.state = StateExpiredSubmitting

	a.logger.Info("attempt time expired, forcing submission",
		"attempt_id", a.attemptID,
		"quiz_id", a.quiz.ID)

	if _, err := a.submit(ctx); err != nil {
		a.logger.Error("forced submission failed",
			"attempt_id", a.attemptID,
			"error", err)
	}
}

// Retry re-attempts a submission after time has expired and a previous
// submit failed. While time remains a failed submit returns the machine to
// InProgress instead, and the taker resubmits through RequestSubmit.
func (a *Attempt) Retry(ctx context.Context) (*backend.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown {
		return nil, ErrTornDown
	}
	if a.state != StateFailed {
		return nil, ErrNotRetryable
	}
	a.state = StateExpiredSubmitting
	return a.submit(ctx)
}

// Teardown abandons the attempt: the timer is cancelled, the ledger is
// discarded and any submission still in flight will not complete into
// visible state.
func (a *Attempt) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown {
		return
	}
	a.tornDown = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.ledger = nil
}

// ===== ACCESSORS =====

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer == nil {
		return 0
	}
	return a.timer.Remaining()
}

func (a *Attempt) AttemptID() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attemptID
}

func (a *Attempt) Quiz() *backend.Quiz {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quiz
}

func (a *Attempt) Result() *backend.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

func (a *Attempt) IsAnswered(questionID uint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger == nil {
		return false
	}
	return a.ledger.IsAnswered(questionID)
}

func (a *Attempt) AnsweredCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger == nil {
		return 0
	}
	return a.ledger.AnsweredCount()
}
