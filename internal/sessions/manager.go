// Package sessions hosts live quiz attempts between HTTP requests. Each
// session owns one engine attempt and a ticking goroutine that drives its
// countdown.
package sessions

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/engine"
)

var ErrSessionNotFound = errors.New("session not found")

// Session binds a session id to a live attempt and its tick loop.
type Session struct {
	ID        string
	TakerID   string
	QuizID    uint
	CreatedAt time.Time

	attempt *engine.Attempt
	cancel  context.CancelFunc
}

// Snapshot is the point-in-time view of a session returned to callers.
// Once the attempt completes it carries the scored result with the
// per-question breakdown and formatted elapsed time.
type Snapshot struct {
	SessionID        string          `json:"session_id"`
	State            engine.State    `json:"state"`
	QuizID           uint            `json:"quiz_id"`
	QuizTitle        string          `json:"quiz_title"`
	RemainingSeconds int             `json:"remaining_seconds"`
	QuestionsCount   int             `json:"questions_count"`
	AnsweredCount    int             `json:"answered_count"`
	Result           *backend.Result `json:"result,omitempty"`

	Percentage *float64               `json:"percentage,omitempty"`
	Elapsed    string                 `json:"elapsed,omitempty"`
	Breakdown  []engine.BreakdownItem `json:"breakdown,omitempty"`
}

// Manager is the registry of live sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	client   backend.Client
	logger   *slog.Logger
	sessions map[string]*Session

	tickInterval time.Duration
	wg           sync.WaitGroup
}

func NewManager(client backend.Client, logger *slog.Logger) *Manager {
	return &Manager{
		client:       client,
		logger:       logger,
		sessions:     make(map[string]*Session),
		tickInterval: time.Second,
	}
}

// StartSession creates a session, starts an attempt for the quiz and spawns
// the countdown loop. On start failure no session is registered.
func (m *Manager) StartSession(ctx context.Context, quizID uint, takerID string) (*Session, error) {
	attempt := engine.NewAttempt(m.client, m.logger, takerID)
	if err := attempt.Start(ctx, quizID); err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	session := &Session{
		ID:        uuid.NewString(),
		TakerID:   takerID,
		QuizID:    quizID,
		CreatedAt: time.Now(),
		attempt:   attempt,
		cancel:    cancel,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.wg.Add(1)
	go m.runCountdown(loopCtx, session)

	m.logger.Info("session started",
		"session_id", session.ID,
		"quiz_id", quizID,
		"taker_id", takerID)
	return session, nil
}

// runCountdown drives the attempt's one-second ticks until the session is
// abandoned or the attempt completes. Ticks in any non-running state are
// no-ops inside the engine, so the loop only has to watch for terminal exit.
func (m *Manager) runCountdown(ctx context.Context, session *Session) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			session.attempt.Tick(ctx)
			if session.attempt.State() == engine.StateCompleted {
				return
			}
		}
	}
}

func (m *Manager) get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Answer records a ledger write for the session's attempt.
func (m *Manager) Answer(sessionID string, questionID uint, value engine.Value) error {
	session, err := m.get(sessionID)
	if err != nil {
		return err
	}
	return session.attempt.SetAnswer(questionID, value)
}

// Submit forwards a taker-initiated submission, confirmation flag included.
func (m *Manager) Submit(ctx context.Context, sessionID string, confirmed bool) (*backend.Result, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.attempt.RequestSubmit(ctx, confirmed)
}

// Retry re-attempts a failed post-expiry submission.
func (m *Manager) Retry(ctx context.Context, sessionID string) (*backend.Result, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.attempt.Retry(ctx)
}

// Snapshot reports the session's current state.
func (m *Manager) Snapshot(sessionID string) (*Snapshot, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		SessionID:        session.ID,
		State:            session.attempt.State(),
		QuizID:           session.QuizID,
		RemainingSeconds: session.attempt.Remaining(),
		AnsweredCount:    session.attempt.AnsweredCount(),
		Result:           session.attempt.Result(),
	}
	if quiz := session.attempt.Quiz(); quiz != nil {
		snapshot.QuizTitle = quiz.Title
		snapshot.QuestionsCount = len(quiz.Questions)
	}
	if result := snapshot.Result; result != nil {
		percentage := engine.Percentage(result)
		snapshot.Percentage = &percentage
		snapshot.Elapsed = engine.FormatElapsed(result.TimeSpentSeconds)
		snapshot.Breakdown = engine.Breakdown(result)
	}
	return snapshot, nil
}

// Quiz returns the definition the session's attempt runs against.
func (m *Manager) Quiz(sessionID string) (*backend.Quiz, error) {
	session, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.attempt.Quiz(), nil
}

// Abandon tears the session down. Any in-flight submission result is
// dropped and the session id becomes unknown.
func (m *Manager) Abandon(sessionID string) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	session.cancel()
	session.attempt.Teardown()

	m.logger.Info("session abandoned", "session_id", sessionID)
	return nil
}

// Close abandons every live session and waits for the tick loops to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.cancel()
		session.attempt.Teardown()
	}
	m.wg.Wait()
}
