package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/quiz-service/internal/backend"
	"github.com/shelfwise/quiz-service/internal/models"
)

func mixedQuestions() []backend.Question {
	return []backend.Question{
		{ID: 1, Text: "Who wrote Don Quixote?", Type: models.MultipleChoice, Points: 2,
			Options: []backend.Option{{ID: 10, Text: "Lope de Vega"}, {ID: 11, Text: "Miguel de Cervantes"}}},
		{ID: 2, Text: "Ulysses was published in 1922.", Type: models.TrueFalse, Points: 1},
		{ID: 3, Text: "Capital of France?", Type: models.FillInTheBlank, Points: 1},
	}
}

func TestLedger_SetAndOverwrite(t *testing.T) {
	ledger := NewLedger(mixedQuestions())

	require.NoError(t, ledger.Set(1, OptionValue(10)))
	require.NoError(t, ledger.Set(1, OptionValue(11)))

	v, ok := ledger.Get(1)
	require.True(t, ok)
	assert.Equal(t, OptionValue(11), v)
	assert.Equal(t, 1, ledger.AnsweredCount())
}

func TestLedger_TypeChecking(t *testing.T) {
	tests := []struct {
		name       string
		questionID uint
		value      Value
		wantErr    error
	}{
		{"option on multiple choice", 1, OptionValue(10), nil},
		{"bool on true/false", 2, BooleanValue(true), nil},
		{"text on fill in the blank", 3, TextValue("Paris"), nil},
		{"text on multiple choice", 1, TextValue("Cervantes"), ErrTypeMismatch},
		{"option on true/false", 2, OptionValue(10), ErrTypeMismatch},
		{"bool on fill in the blank", 3, BooleanValue(false), ErrTypeMismatch},
		{"unknown question", 99, TextValue("x"), ErrUnknownQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLedger(mixedQuestions()).Set(tt.questionID, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// After answering every question the payload has exactly N records, each
// with exactly one of the three answer fields populated, matching the
// question's type.
func TestLedger_PayloadExactlyOneFieldPerRecord(t *testing.T) {
	questions := mixedQuestions()
	ledger := NewLedger(questions)

	require.NoError(t, ledger.Set(1, OptionValue(11)))
	require.NoError(t, ledger.Set(2, BooleanValue(true)))
	require.NoError(t, ledger.Set(3, TextValue("Paris")))
	require.Equal(t, len(questions), ledger.AnsweredCount())

	payload := ledger.ToSubmissionPayload(questions)
	require.Len(t, payload, len(questions))

	for i, record := range payload {
		populated := 0
		if record.SelectedOptionID != nil {
			populated++
			assert.Equal(t, models.MultipleChoice, questions[i].Type)
		}
		if record.BooleanAnswer != nil {
			populated++
			assert.Equal(t, models.TrueFalse, questions[i].Type)
		}
		if record.TextAnswer != nil {
			populated++
			assert.Equal(t, models.FillInTheBlank, questions[i].Type)
		}
		assert.Equal(t, 1, populated, "record %d must have exactly one populated field", i)
		assert.Equal(t, questions[i].ID, record.QuestionID)
	}
}

func TestLedger_UnansweredQuestionsProduceNullRecords(t *testing.T) {
	questions := mixedQuestions()
	ledger := NewLedger(questions)
	require.NoError(t, ledger.Set(2, BooleanValue(false)))

	payload := ledger.ToSubmissionPayload(questions)
	require.Len(t, payload, len(questions))

	assert.Nil(t, payload[0].SelectedOptionID)
	assert.Nil(t, payload[0].TextAnswer)
	assert.Nil(t, payload[0].BooleanAnswer)

	require.NotNil(t, payload[1].BooleanAnswer)
	assert.False(t, *payload[1].BooleanAnswer)

	assert.Nil(t, payload[2].TextAnswer)
}

func TestLedger_IsAnswered(t *testing.T) {
	ledger := NewLedger(mixedQuestions())
	assert.False(t, ledger.IsAnswered(3))

	require.NoError(t, ledger.Set(3, TextValue("Paris")))
	assert.True(t, ledger.IsAnswered(3))
}
