package cbt

import "errors"

// Every failure the engine surfaces is one of these kinds. Storage-internal
// errors never escape; they are wrapped as ErrStoreUnavailable, which is the
// only retry-safe kind.
var (
	ErrNotEligible      = errors.New("test not available for this student")
	ErrNotStarted       = errors.New("test has not opened yet")
	ErrClosed           = errors.New("test window has closed")
	ErrTimeExpired      = errors.New("attempt time has expired")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrNoQuestions      = errors.New("test has no questions")
	ErrAttemptMismatch  = errors.New("attempt does not match test and student")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store-level sentinels, translated by the engine and never returned to
// callers directly.
var (
	ErrTestNotFound     = errors.New("test not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrDuplicateAttempt = errors.New("attempt already exists for test and student")
)
