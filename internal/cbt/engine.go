package cbt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the engine's notion of now. Deadlines are always computed
// server-side from the attempt's immutable started_at; client time is never
// consulted.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// Catalog is the read-only view of tests and questions. An empty classID
// skips the class-scope filter (used by Submit, where the attempt row
// already proves the student was eligible to start).
type Catalog interface {
	GetPublishedTest(ctx context.Context, testID, classID string) (Test, error)
	GetQuestions(ctx context.Context, testID string) ([]Question, error)
}

// AttemptStore owns all writes to attempts and answers. No other component
// mutates those tables.
type AttemptStore interface {
	FindAttempt(ctx context.Context, testID, studentID string) (Attempt, error)
	GetAttempt(ctx context.Context, attemptID string) (Attempt, error)
	// CreateAttempt fails with ErrDuplicateAttempt when a row for the same
	// (test, student) already exists; callers re-read the winner's row.
	CreateAttempt(ctx context.Context, a Attempt) (Attempt, error)
	RefreshTotalQuestions(ctx context.Context, attemptID string, total int) error
	SavedAnswers(ctx context.Context, attemptID string) (map[string]Option, error)
	// FinalizeAttempt replaces the attempt's answers and flips its status
	// from in_progress to submitted in one transaction. The status update is
	// compare-and-set: if the attempt is no longer in_progress the whole
	// transaction fails with ErrAlreadySubmitted and nothing is written.
	FinalizeAttempt(ctx context.Context, attemptID string, score, total int, submittedAt time.Time, answers []Answer) error
}

// Engine drives the attempt state machine:
// NotStarted (no row) -> InProgress -> Submitted (terminal).
type Engine struct {
	catalog  Catalog
	attempts AttemptStore
	clock    Clock
}

func NewEngine(catalog Catalog, attempts AttemptStore, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	return &Engine{catalog: catalog, attempts: attempts, clock: clock}
}

// BeginOrResume opens a new attempt or resumes the existing one for
// (testID, studentID). It never creates a second row for the pair and never
// rewinds started_at: repeated calls return the same attempt with a
// non-increasing remaining time.
func (e *Engine) BeginOrResume(ctx context.Context, testID, studentID, classID string) (*Session, error) {
	test, err := e.catalog.GetPublishedTest(ctx, testID, classID)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return nil, ErrNotEligible
		}
		return nil, transient("load test", err)
	}

	now := e.clock.Now()
	if test.StartsAt != nil && now.Before(*test.StartsAt) {
		return nil, ErrNotStarted
	}
	if test.EndsAt != nil && now.After(*test.EndsAt) {
		return nil, ErrClosed
	}

	questions, err := e.catalog.GetQuestions(ctx, testID)
	if err != nil {
		return nil, transient("load questions", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	attempt, err := e.attempts.FindAttempt(ctx, testID, studentID)
	switch {
	case errors.Is(err, ErrAttemptNotFound):
		attempt, err = e.attempts.CreateAttempt(ctx, Attempt{
			ID:             uuid.NewString(),
			TestID:         testID,
			StudentID:      studentID,
			Status:         AttemptInProgress,
			TotalQuestions: len(questions),
			StartedAt:      now,
		})
		if errors.Is(err, ErrDuplicateAttempt) {
			// Lost the create race; the winner's row is authoritative.
			attempt, err = e.attempts.FindAttempt(ctx, testID, studentID)
		}
		if err != nil {
			return nil, transient("create attempt", err)
		}
	case err != nil:
		return nil, transient("find attempt", err)
	}

	if attempt.Status == AttemptSubmitted {
		return nil, ErrAlreadySubmitted
	}
	if attempt.TotalQuestions != len(questions) {
		// Question set was edited after the attempt started.
		if err := e.attempts.RefreshTotalQuestions(ctx, attempt.ID, len(questions)); err != nil {
			return nil, transient("refresh total", err)
		}
		attempt.TotalQuestions = len(questions)
	}

	remaining := int64(test.DurationMinutes)*60 - int64(now.Sub(attempt.StartedAt)/time.Second)
	if remaining <= 0 {
		return nil, ErrTimeExpired
	}

	saved, err := e.attempts.SavedAnswers(ctx, attempt.ID)
	if err != nil {
		return nil, transient("load answers", err)
	}

	return &Session{
		AttemptID:        attempt.ID,
		RemainingSeconds: remaining,
		Questions:        stripKeys(questions),
		SavedAnswers:     saved,
	}, nil
}

// Submit scores rawAnswers against the test's answer key and finalizes the
// attempt in one transaction. It deliberately does not re-check the duration
// deadline: an attempt that was in progress when time ran out is still
// scored normally. Only one Submit can ever succeed per attempt.
func (e *Engine) Submit(ctx context.Context, testID, attemptID, studentID string, rawAnswers map[string]string) (*Result, error) {
	attempt, err := e.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			return nil, ErrAttemptMismatch
		}
		return nil, transient("load attempt", err)
	}
	if attempt.TestID != testID || attempt.StudentID != studentID {
		return nil, ErrAttemptMismatch
	}
	if attempt.Status == AttemptSubmitted {
		return nil, ErrAlreadySubmitted
	}

	test, err := e.catalog.GetPublishedTest(ctx, testID, "")
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return nil, ErrNotEligible
		}
		return nil, transient("load test", err)
	}
	now := e.clock.Now()
	if test.StartsAt != nil && now.Before(*test.StartsAt) {
		return nil, ErrNotStarted
	}

	questions, err := e.catalog.GetQuestions(ctx, testID)
	if err != nil {
		return nil, transient("load questions", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	score := 0
	answers := make([]Answer, 0, len(questions))
	for _, q := range questions {
		sel, ok := ParseOption(rawAnswers[q.ID])
		if !ok {
			continue // unanswered or malformed: no row, not an error
		}
		key, ok := ParseOption(string(q.Correct))
		correct := ok && sel == key
		if correct {
			score++
		}
		answers = append(answers, Answer{
			ID:         uuid.NewString(),
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
			Selected:   sel,
			IsCorrect:  correct,
		})
	}

	err = e.attempts.FinalizeAttempt(ctx, attempt.ID, score, len(questions), now, answers)
	if err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			return nil, ErrAlreadySubmitted
		}
		return nil, transient("finalize attempt", err)
	}

	return &Result{Score: score, TotalQuestions: len(questions)}, nil
}

func stripKeys(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	for i := range out {
		out[i].Correct = ""
	}
	return out
}

func transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
