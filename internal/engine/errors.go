package engine

import "errors"

var (
	// Start guards
	ErrEmptyQuiz      = errors.New("quiz has no questions")
	ErrAlreadyStarted = errors.New("attempt already started")

	// Mutation guards
	ErrNotInProgress   = errors.New("attempt is not in progress")
	ErrTypeMismatch    = errors.New("answer value does not match question type")
	ErrUnknownQuestion = errors.New("question does not belong to this quiz")

	// Submission guards
	ErrConfirmationRequired = errors.New("submission requires confirmation")
	ErrNotRetryable         = errors.New("attempt is not awaiting a submission retry")
	ErrTornDown             = errors.New("attempt has been torn down")
)
