package engine

import (
	"fmt"

	"github.com/shelfwise/quiz-service/internal/backend"
)

// Pure derivations over a graded result, kept free of network and mutable
// state so display code and tests can use them directly.

// Percentage returns the backend-supplied percentage when present, and
// computes score/totalScore*100 otherwise. A zero total yields 0.
func Percentage(r *backend.Result) float64 {
	if r.Percentage != nil {
		return *r.Percentage
	}
	if r.TotalScore == 0 {
		return 0
	}
	return r.Score / r.TotalScore * 100
}

// PassedAgainst evaluates the result against a quiz's passing-score
// threshold (percent).
func PassedAgainst(r *backend.Result, passingScore int) bool {
	return Percentage(r) >= float64(passingScore)
}

// FormatElapsed renders a second count as "MMm SSs", e.g. "12m 05s".
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
}

// BreakdownItem pairs a question with the taker's chosen value and its
// graded correctness.
type BreakdownItem struct {
	QuestionID   uint     `json:"question_id"`
	QuestionText string   `json:"question_text"`
	Chosen       string   `json:"chosen"`
	Answered     bool     `json:"answered"`
	IsCorrect    bool     `json:"is_correct"`
	PointsEarned float64  `json:"points_earned"`
	Options      []string `json:"options,omitempty"` // texts of correct options, revealed post-grading
}

// Breakdown derives the per-question view of a result.
func Breakdown(r *backend.Result) []BreakdownItem {
	items := make([]BreakdownItem, 0, len(r.Answers))
	for _, detail := range r.Answers {
		item := BreakdownItem{
			QuestionID:   detail.QuestionID,
			QuestionText: detail.QuestionText,
			IsCorrect:    detail.IsCorrect,
			PointsEarned: detail.PointsEarned,
		}
		switch {
		case detail.SelectedOptionText != nil:
			item.Chosen = *detail.SelectedOptionText
			item.Answered = true
		case detail.BooleanAnswer != nil:
			item.Chosen = fmt.Sprintf("%t", *detail.BooleanAnswer)
			item.Answered = true
		case detail.TextAnswer != nil:
			item.Chosen = *detail.TextAnswer
			item.Answered = true
		}
		for _, opt := range detail.Options {
			if opt.IsCorrect {
				item.Options = append(item.Options, opt.Text)
			}
		}
		items = append(items, item)
	}
	return items
}
