package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/models"
)

// gradedSubmission is the outcome of grading every answer of one attempt.
type gradedSubmission struct {
	stored     []*models.StoredAnswer
	details    []backend.AnswerDetail
	score      float64
	totalScore float64
}

func (g *gradedSubmission) percentage() float64 {
	if g.totalScore == 0 {
		return 0
	}
	return g.score / g.totalScore * 100
}

// gradeSubmission scores submitted answers against the quiz definition.
// Unanswered questions earn zero but still count toward the total, so a
// timeout submission with null answers grades cleanly.
func gradeSubmission(quiz *models.Quiz, correctAnswers map[uint]*models.CorrectAnswer, answers []backend.SubmittedAnswer) (*gradedSubmission, error) {
	questions := make(map[uint]*models.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	graded := &gradedSubmission{
		stored:  make([]*models.StoredAnswer, 0, len(answers)),
		details: make([]backend.AnswerDetail, 0, len(answers)),
	}
	for i := range quiz.Questions {
		graded.totalScore += float64(quiz.Questions[i].Points)
	}

	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %d does not belong to quiz %d",
				ErrValidationFailed, answer.QuestionID, quiz.ID)
		}

		correct, points := gradeAnswer(question, correctAnswers[question.ID], answer)

		payload, err := json.Marshal(models.AnswerPayload{
			SelectedOptionID: answer.SelectedOptionID,
			TextAnswer:       answer.TextAnswer,
			BooleanAnswer:    answer.BooleanAnswer,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode answer payload: %w", err)
		}

		isCorrect := correct
		pointsEarned := points
		graded.stored = append(graded.stored, &models.StoredAnswer{
			QuestionID:   question.ID,
			AnswerData:   datatypes.JSON(payload),
			IsCorrect:    &isCorrect,
			PointsEarned: &pointsEarned,
		})
		graded.details = append(graded.details, buildAnswerDetail(question, answer, correct, points))
		graded.score += points
	}

	return graded, nil
}

// gradeAnswer scores a single answer per its question's type. A null answer
// of any type is simply wrong.
func gradeAnswer(question *models.Question, expected *models.CorrectAnswer, answer backend.SubmittedAnswer) (bool, float64) {
	var correct bool

	switch question.Type {
	case models.MultipleChoice:
		if answer.SelectedOptionID != nil {
			for _, option := range question.Options {
				if option.ID == *answer.SelectedOptionID {
					correct = option.IsCorrect
					break
				}
			}
		}
	case models.TrueFalse:
		if answer.BooleanAnswer != nil && expected != nil && expected.BooleanAnswer != nil {
			correct = *answer.BooleanAnswer == *expected.BooleanAnswer
		}
	case models.FillInTheBlank:
		if answer.TextAnswer != nil && expected != nil && expected.TextAnswer != nil {
			correct = strings.EqualFold(
				strings.TrimSpace(*answer.TextAnswer),
				strings.TrimSpace(*expected.TextAnswer),
			)
		}
	}

	if correct {
		return true, float64(question.Points)
	}
	return false, 0
}

func buildAnswerDetail(question *models.Question, answer backend.SubmittedAnswer, correct bool, points float64) backend.AnswerDetail {
	detail := backend.AnswerDetail{
		QuestionID:       question.ID,
		QuestionText:     question.Text,
		QuestionType:     question.Type,
		SelectedOptionID: answer.SelectedOptionID,
		TextAnswer:       answer.TextAnswer,
		BooleanAnswer:    answer.BooleanAnswer,
		IsCorrect:        correct,
		PointsEarned:     points,
	}

	if question.Type == models.MultipleChoice {
		detail.Options = make([]backend.ResultOption, 0, len(question.Options))
		for _, option := range question.Options {
			if answer.SelectedOptionID != nil && option.ID == *answer.SelectedOptionID {
				text := option.Text
				detail.SelectedOptionText = &text
			}
			detail.Options = append(detail.Options, backend.ResultOption{
				ID:        option.ID,
				Text:      option.Text,
				IsCorrect: option.IsCorrect,
			})
		}
	}

	return detail
}
