package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shelfwise/quiz-service/internal/repositories"
)

type gormRepository struct {
	db      *gorm.DB
	quiz    repositories.QuizRepository
	attempt repositories.AttemptRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:      db,
		quiz:    NewQuizPostgreSQL(db),
		attempt: NewAttemptPostgreSQL(db),
	}
}

func (r *gormRepository) Quiz() repositories.QuizRepository {
	return r.quiz
}

func (r *gormRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
