package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/cache"
	"github.com/shelfwise/quiz-service/internal/models"
	"github.com/shelfwise/quiz-service/internal/repositories"
)

// memoryCache is a map-backed CacheService for tests.
type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = payload
	c.sets++
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestQuizService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("strips option correctness from the taker view", func(t *testing.T) {
		repo := NewMockRepository()
		svc := NewQuizService(repo, newMemoryCache(), time.Minute, testLogger())

		repo.quiz.On("GetByIDWithQuestions", ctx, uint(1)).Return(mixedQuiz(), nil)

		quiz, err := svc.Get(ctx, 1)

		assert.NoError(t, err)
		assert.Equal(t, "European Capitals", quiz.Title)
		assert.Len(t, quiz.Questions, 3)

		// The multiple-choice question keeps its options but the wire DTO
		// has no correctness field to leak.
		mc := quiz.Questions[0]
		if assert.Len(t, mc.Options, 2) {
			raw, err := json.Marshal(mc.Options[0])
			assert.NoError(t, err)
			assert.NotContains(t, string(raw), "is_correct")
		}
		// Non-option types carry no options at all.
		assert.Empty(t, quiz.Questions[1].Options)
		repo.AssertExpectations(t)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		repo := NewMockRepository()
		mem := newMemoryCache()
		svc := NewQuizService(repo, mem, time.Minute, testLogger())

		repo.quiz.On("GetByIDWithQuestions", ctx, uint(1)).Return(mixedQuiz(), nil).Once()

		first, err := svc.Get(ctx, 1)
		assert.NoError(t, err)
		second, err := svc.Get(ctx, 1)
		assert.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, mem.sets)
		repo.AssertExpectations(t)
	})

	t.Run("missing quiz", func(t *testing.T) {
		repo := NewMockRepository()
		svc := NewQuizService(repo, newMemoryCache(), time.Minute, testLogger())

		repo.quiz.On("GetByIDWithQuestions", ctx, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Get(ctx, 99)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("draft quiz is hidden from takers", func(t *testing.T) {
		repo := NewMockRepository()
		svc := NewQuizService(repo, newMemoryCache(), time.Minute, testLogger())

		quiz := mixedQuiz()
		quiz.Status = models.QuizStatusDraft
		repo.quiz.On("GetByIDWithQuestions", ctx, uint(1)).Return(quiz, nil)

		_, err := svc.Get(ctx, 1)
		assert.ErrorIs(t, err, ErrQuizNotPublished)
	})
}

func TestQuizService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("forces the published filter", func(t *testing.T) {
		repo := NewMockRepository()
		svc := NewQuizService(repo, newMemoryCache(), time.Minute, testLogger())

		published := models.QuizStatusPublished
		quiz := mixedQuiz()
		quiz.QuestionsCount = 3
		repo.quiz.On("List", ctx, repositories.QuizFilters{
			Status:  &published,
			Subject: "Geography",
			Limit:   20,
		}).Return([]*models.Quiz{quiz}, int64(1), nil)

		summaries, total, err := svc.List(ctx, backend.ListFilters{Subject: "Geography", Limit: 20})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		if assert.Len(t, summaries, 1) {
			assert.Equal(t, "European Capitals", summaries[0].Title)
			assert.Equal(t, 3, summaries[0].QuestionsCount)
		}
		repo.AssertExpectations(t)
	})
}
