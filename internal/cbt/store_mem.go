package cbt

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded implementation of Catalog and AttemptStore
// for tests and single-process dev runs. FinalizeAttempt performs the same
// compare-and-set on status as the SQL store, so race behavior matches.
type MemoryStore struct {
	mu        sync.Mutex
	tests     map[string]Test
	questions map[string][]Question // testID -> ordered questions
	attempts  map[string]Attempt    // attemptID -> attempt
	byPair    map[string]string     // testID|studentID -> attemptID
	answers   map[string][]Answer   // attemptID -> answers
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tests:     map[string]Test{},
		questions: map[string][]Question{},
		attempts:  map[string]Attempt{},
		byPair:    map[string]string{},
		answers:   map[string][]Answer{},
	}
}

func pairKey(testID, studentID string) string { return testID + "|" + studentID }

// PutTest seeds a test and its questions.
func (m *MemoryStore) PutTest(t Test, questions []Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[t.ID] = t
	qs := make([]Question, len(questions))
	copy(qs, questions)
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].SeqNo != qs[j].SeqNo {
			return qs[i].SeqNo < qs[j].SeqNo
		}
		return qs[i].ID < qs[j].ID
	})
	m.questions[t.ID] = qs
}

func (m *MemoryStore) GetPublishedTest(ctx context.Context, testID, classID string) (Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[testID]
	if !ok || t.Status != TestPublished {
		return Test{}, ErrTestNotFound
	}
	if classID != "" && t.ClassID != classID {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

func (m *MemoryStore) GetQuestions(ctx context.Context, testID string) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qs := m.questions[testID]
	out := make([]Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (m *MemoryStore) FindAttempt(ctx context.Context, testID, studentID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byPair[pairKey(testID, studentID)]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return m.attempts[id], nil
}

func (m *MemoryStore) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *MemoryStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(a.TestID, a.StudentID)
	if _, exists := m.byPair[key]; exists {
		return Attempt{}, ErrDuplicateAttempt
	}
	a.CreatedAt = a.StartedAt
	a.UpdatedAt = a.StartedAt
	m.attempts[a.ID] = a
	m.byPair[key] = a.ID
	return a, nil
}

func (m *MemoryStore) RefreshTotalQuestions(ctx context.Context, attemptID string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrAttemptNotFound
	}
	a.TotalQuestions = total
	m.attempts[attemptID] = a
	return nil
}

func (m *MemoryStore) SavedAnswers(ctx context.Context, attemptID string) (map[string]Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Option{}
	for _, ans := range m.answers[attemptID] {
		out[ans.QuestionID] = ans.Selected
	}
	return out, nil
}

func (m *MemoryStore) FinalizeAttempt(ctx context.Context, attemptID string, score, total int, submittedAt time.Time, answers []Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrAttemptNotFound
	}
	if a.Status != AttemptInProgress {
		return ErrAlreadySubmitted
	}
	rows := make([]Answer, len(answers))
	copy(rows, answers)
	m.answers[attemptID] = rows
	a.Status = AttemptSubmitted
	a.Score = score
	a.TotalQuestions = total
	a.SubmittedAt = &submittedAt
	a.UpdatedAt = submittedAt
	m.attempts[attemptID] = a
	return nil
}
