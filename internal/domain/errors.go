package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz is returned when quiz content breaks an authoring invariant.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrQuizAlreadyPlayed is returned when single-attempt mode blocks a replay.
	ErrQuizAlreadyPlayed = errors.New("quiz already played")
	// ErrSessionNotFound is returned when a participant has no session yet.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrStoreUnavailable signals a backing store could not be reached, as opposed to holding no data.
	ErrStoreUnavailable = errors.New("store unavailable")
)
