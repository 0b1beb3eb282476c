package domain

import "errors"

var (
	// ErrBankNotFound is returned when no questions exist for a
	// category/difficulty pair. Callers pick their own defaults; the
	// engine never falls back silently.
	ErrBankNotFound = errors.New("no questions found for selected category and difficulty")
	// ErrSessionNotFound is returned when a session id does not resolve.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrEmptyQuestionSet indicates a session was started with no questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrInvalidTransition indicates an operation not valid in the
	// session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrQuestionNotActive indicates an answer targeted a question other
	// than the one currently displayed.
	ErrQuestionNotActive = errors.New("question is not the active question")
)
