package resthttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/models"
)

func TestGetQuiz(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/quizzes/5", r.URL.Path)
		json.NewEncoder(w).Encode(backend.Quiz{
			ID:        5,
			Title:     "European Capitals",
			TimeLimit: 10,
			Questions: []backend.Question{
				{ID: 1, Text: "Capital of France?", Type: models.FillInTheBlank, Points: 1},
			},
		})
	}))
	defer server.Close()

	quiz, err := New(server.URL).GetQuiz(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "European Capitals", quiz.Title)
	assert.Len(t, quiz.Questions, 1)
}

func TestGetQuiz_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := New(server.URL).GetQuiz(context.Background(), 404)
	assert.ErrorIs(t, err, backend.ErrQuizNotFound)
}

func TestListQuizzes_FilterQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quizzes", r.URL.Path)
		assert.Equal(t, "literature", r.URL.Query().Get("subject"))
		assert.Equal(t, "cervantes", r.URL.Query().Get("search"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(listResponse{
			Items: []*backend.QuizSummary{{ID: 5, Title: "Classics", QuestionsCount: 12}},
			Total: 1,
		})
	}))
	defer server.Close()

	items, total, err := New(server.URL).ListQuizzes(context.Background(), backend.ListFilters{
		Subject: "literature",
		Search:  "cervantes",
		Limit:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Classics", items[0].Title)
}

func TestStartAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/quizzes/5/attempts", r.URL.Path)

		var req startAttemptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "taker-1", req.TakerID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(backend.AttemptTicket{AttemptID: 42})
	}))
	defer server.Close()

	ticket, err := New(server.URL).StartAttempt(context.Background(), 5, "taker-1")
	require.NoError(t, err)
	assert.Equal(t, uint(42), ticket.AttemptID)
}

func TestStartAttempt_RejectedMapsToCreationFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	_, err := New(server.URL).StartAttempt(context.Background(), 5, "taker-1")
	assert.ErrorIs(t, err, backend.ErrAttemptCreationFailed)
}

func TestSubmitAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/attempts/42/submit", r.URL.Path)

		var req backend.SubmitAttemptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Answers, 1)
		assert.Nil(t, req.Answers[0].SelectedOptionID)
		require.NotNil(t, req.Answers[0].TextAnswer)
		assert.Equal(t, "Paris", *req.Answers[0].TextAnswer)

		json.NewEncoder(w).Encode(backend.Result{AttemptID: 42, Score: 1, TotalScore: 1, IsPassed: true})
	}))
	defer server.Close()

	text := "Paris"
	result, err := New(server.URL).SubmitAttempt(context.Background(), &backend.SubmitAttemptRequest{
		AttemptID:        42,
		Answers:          []backend.SubmittedAnswer{{QuestionID: 1, TextAnswer: &text}},
		TimeSpentSeconds: 30,
	})
	require.NoError(t, err)
	assert.True(t, result.IsPassed)
}

func TestSubmitAttempt_ServerErrorMapsToSubmissionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL).SubmitAttempt(context.Background(), &backend.SubmitAttemptRequest{AttemptID: 42})
	assert.ErrorIs(t, err, backend.ErrSubmissionFailed)
}
