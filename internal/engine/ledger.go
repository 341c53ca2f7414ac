package engine

import (
	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/models"
)

// Value is a typed answer value. Exactly one concrete type exists per
// question type, so a mismatched write is caught at the ledger boundary.
type Value interface {
	isAnswerValue()
}

// OptionValue selects one option of a MultipleChoice question.
type OptionValue uint

// BooleanValue answers a TrueFalse question.
type BooleanValue bool

// TextValue answers a FillInTheBlank question.
type TextValue string

func (OptionValue) isAnswerValue()  {}
func (BooleanValue) isAnswerValue() {}
func (TextValue) isAnswerValue()    {}

// Ledger is the working set of a taker's answers during one attempt, keyed
// by question id and type-checked at write time. At most one entry per
// question; repeated writes overwrite.
type Ledger struct {
	questions map[uint]backend.Question
	entries   map[uint]Value
}

func NewLedger(questions []backend.Question) *Ledger {
	byID := make(map[uint]backend.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &Ledger{
		questions: byID,
		entries:   make(map[uint]Value),
	}
}

// Set records the taker's current answer for a question, replacing any
// previous value. It fails with ErrUnknownQuestion for foreign question ids
// and ErrTypeMismatch when the value's shape does not match the question's
// declared type; on failure the ledger is unchanged.
func (l *Ledger) Set(questionID uint, value Value) error {
	question, ok := l.questions[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	if !matchesType(question.Type, value) {
		return ErrTypeMismatch
	}
	l.entries[questionID] = value
	return nil
}

func (l *Ledger) Get(questionID uint) (Value, bool) {
	v, ok := l.entries[questionID]
	return v, ok
}

func (l *Ledger) IsAnswered(questionID uint) bool {
	_, ok := l.entries[questionID]
	return ok
}

func (l *Ledger) AnsweredCount() int {
	return len(l.entries)
}

// ToSubmissionPayload builds one answer record per question, in question
// order. This is the single place that knows the three mutually exclusive
// wire fields: the two that do not apply to a question's type are always
// null, and unanswered questions produce a record with all three null.
func (l *Ledger) ToSubmissionPayload(questions []backend.Question) []backend.SubmittedAnswer {
	answers := make([]backend.SubmittedAnswer, 0, len(questions))
	for _, q := range questions {
		record := backend.SubmittedAnswer{QuestionID: q.ID}
		if v, ok := l.entries[q.ID]; ok {
			switch value := v.(type) {
			case OptionValue:
				id := uint(value)
				record.SelectedOptionID = &id
			case BooleanValue:
				b := bool(value)
				record.BooleanAnswer = &b
			case TextValue:
				s := string(value)
				record.TextAnswer = &s
			}
		}
		answers = append(answers, record)
	}
	return answers
}

func matchesType(qt models.QuestionType, value Value) bool {
	switch value.(type) {
	case OptionValue:
		return qt == models.MultipleChoice
	case BooleanValue:
		return qt == models.TrueFalse
	case TextValue:
		return qt == models.FillInTheBlank
	default:
		return false
	}
}
