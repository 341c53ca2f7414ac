package sessions

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/engine"
	"github.com/shelfwise/quiz-service/internal/models"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetQuiz(ctx context.Context, quizID uint) (*backend.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Quiz), args.Error(1)
}

func (m *MockClient) ListQuizzes(ctx context.Context, filters backend.ListFilters) ([]*backend.QuizSummary, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*backend.QuizSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockClient) StartAttempt(ctx context.Context, quizID uint, takerID string) (*backend.AttemptTicket, error) {
	args := m.Called(ctx, quizID, takerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.AttemptTicket), args.Error(1)
}

func (m *MockClient) SubmitAttempt(ctx context.Context, req *backend.SubmitAttemptRequest) (*backend.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Result), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleQuestionQuiz(timeLimitMinutes int) *backend.Quiz {
	return &backend.Quiz{
		ID:           1,
		Title:        "Checkout Basics",
		TimeLimit:    timeLimitMinutes,
		PassingScore: 60,
		Questions: []backend.Question{
			{
				ID: 1, Text: "Pick one", Type: models.MultipleChoice, Points: 5,
				Options: []backend.Option{{ID: 10, Text: "A"}, {ID: 11, Text: "B"}},
			},
		},
	}
}

func startedSession(t *testing.T, client *MockClient, manager *Manager) *Session {
	t.Helper()
	client.On("GetQuiz", mock.Anything, uint(1)).Return(singleQuestionQuiz(10), nil)
	client.On("StartAttempt", mock.Anything, uint(1), "taker-1").
		Return(&backend.AttemptTicket{AttemptID: 42, StartedAt: time.Now()}, nil)

	session, err := manager.StartSession(context.Background(), 1, "taker-1")
	assert.NoError(t, err)
	return session
}

func TestManager_StartSession(t *testing.T) {
	t.Run("registers a running session", func(t *testing.T) {
		client := new(MockClient)
		manager := NewManager(client, testLogger())
		defer manager.Close()

		session := startedSession(t, client, manager)
		assert.NotEmpty(t, session.ID)

		snapshot, err := manager.Snapshot(session.ID)
		assert.NoError(t, err)
		assert.Equal(t, engine.StateInProgress, snapshot.State)
		assert.Equal(t, 600, snapshot.RemainingSeconds)
		assert.Equal(t, "Checkout Basics", snapshot.QuizTitle)
		assert.Equal(t, 1, snapshot.QuestionsCount)
		assert.Equal(t, 0, snapshot.AnsweredCount)
	})

	t.Run("failed start leaves no session behind", func(t *testing.T) {
		client := new(MockClient)
		manager := NewManager(client, testLogger())
		defer manager.Close()

		empty := singleQuestionQuiz(10)
		empty.Questions = nil
		client.On("GetQuiz", mock.Anything, uint(1)).Return(empty, nil)

		_, err := manager.StartSession(context.Background(), 1, "taker-1")
		assert.ErrorIs(t, err, engine.ErrEmptyQuiz)

		manager.mu.RLock()
		assert.Empty(t, manager.sessions)
		manager.mu.RUnlock()
	})
}

func TestManager_AnswerAndSubmit(t *testing.T) {
	client := new(MockClient)
	manager := NewManager(client, testLogger())
	defer manager.Close()

	session := startedSession(t, client, manager)

	assert.NoError(t, manager.Answer(session.ID, 1, engine.OptionValue(10)))

	snapshot, err := manager.Snapshot(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, snapshot.AnsweredCount)

	// Unconfirmed submits never reach the backend.
	_, err = manager.Submit(context.Background(), session.ID, false)
	assert.ErrorIs(t, err, engine.ErrConfirmationRequired)

	client.On("SubmitAttempt", mock.Anything, mock.AnythingOfType("*backend.SubmitAttemptRequest")).
		Return(&backend.Result{AttemptID: 42, Score: 5, TotalScore: 5, IsPassed: true}, nil)

	result, err := manager.Submit(context.Background(), session.ID, true)
	assert.NoError(t, err)
	assert.True(t, result.IsPassed)

	snapshot, err = manager.Snapshot(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, engine.StateCompleted, snapshot.State)
	assert.NotNil(t, snapshot.Result)
}

func TestManager_UnknownSession(t *testing.T) {
	manager := NewManager(new(MockClient), testLogger())
	defer manager.Close()

	assert.ErrorIs(t, manager.Answer("nope", 1, engine.OptionValue(10)), ErrSessionNotFound)
	_, err := manager.Submit(context.Background(), "nope", true)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Snapshot("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, manager.Abandon("nope"), ErrSessionNotFound)
}

func TestManager_Abandon(t *testing.T) {
	client := new(MockClient)
	manager := NewManager(client, testLogger())
	defer manager.Close()

	session := startedSession(t, client, manager)

	assert.NoError(t, manager.Abandon(session.ID))

	_, err := manager.Snapshot(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, manager.Abandon(session.ID), ErrSessionNotFound)
}

func TestManager_CountdownForcesSubmission(t *testing.T) {
	client := new(MockClient)
	manager := NewManager(client, testLogger())
	manager.tickInterval = time.Millisecond
	defer manager.Close()

	client.On("GetQuiz", mock.Anything, uint(1)).Return(singleQuestionQuiz(1), nil)
	client.On("StartAttempt", mock.Anything, uint(1), "taker-1").
		Return(&backend.AttemptTicket{AttemptID: 42, StartedAt: time.Now()}, nil)
	client.On("SubmitAttempt", mock.Anything, mock.AnythingOfType("*backend.SubmitAttemptRequest")).
		Return(&backend.Result{AttemptID: 42, Score: 0, TotalScore: 5}, nil).
		Once()

	session, err := manager.StartSession(context.Background(), 1, "taker-1")
	assert.NoError(t, err)

	// 60 one-millisecond ticks run the one-minute quiz out; the loop then
	// forces exactly one submission.
	assert.Eventually(t, func() bool {
		snapshot, err := manager.Snapshot(session.ID)
		return err == nil && snapshot.State == engine.StateCompleted
	}, 2*time.Second, 5*time.Millisecond)

	client.AssertExpectations(t)
}
