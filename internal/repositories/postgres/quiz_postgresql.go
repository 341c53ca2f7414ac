package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shelfwise/quiz-service/internal/models"
	"github.com/shelfwise/quiz-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`questions."order" ASC`)
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order(`question_options."order" ASC`)
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}

	quiz.QuestionsCount = len(quiz.Questions)
	for _, question := range quiz.Questions {
		quiz.TotalPoints += question.Points
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	// apply filters first
	query := q.db.WithContext(ctx).Model(&models.Quiz{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then pagination and sorting
	query = q.applyPaginationAndSort(query, filters)

	if err := query.Preload("Questions").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	for _, quiz := range quizzes {
		quiz.QuestionsCount = len(quiz.Questions)
		for _, question := range quiz.Questions {
			quiz.TotalPoints += question.Points
		}
	}

	return quizzes, total, nil
}

func (q QuizPostgreSQL) GetCorrectAnswers(ctx context.Context, quizID uint) (map[uint]*models.CorrectAnswer, error) {
	var answers []*models.CorrectAnswer
	if err := q.db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = question_correct_answers.question_id").
		Where("questions.quiz_id = ?", quizID).
		Find(&answers).Error; err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]*models.CorrectAnswer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}
	return byQuestion, nil
}

func (q QuizPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}
	if filters.Grade != "" {
		query = query.Where("grade = ?", filters.Grade)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

func (q QuizPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "title", "created_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
