package cbt

import "time"

// Test status values as stored in the catalog.
const (
	TestDraft     = "draft"
	TestPublished = "published"
	TestClosed    = "closed"
)

// Attempt status values.
const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
)

type Test struct {
	ID              string     `json:"id"`
	SchoolID        string     `json:"school_id"`
	ClassID         string     `json:"class_id"`
	Title           string     `json:"title"`
	Status          string     `json:"status"` // draft|published|closed
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

// Question order is significant: SeqNo ascending, ID as tie-break.
type Question struct {
	ID      string `json:"id"`
	TestID  string `json:"test_id"`
	SeqNo   int    `json:"seq_no"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
	Correct Option `json:"correct,omitempty"` // stripped before serving to students
}

type Attempt struct {
	ID             string     `json:"id"`
	TestID         string     `json:"test_id"`
	StudentID      string     `json:"student_id"`
	Status         string     `json:"status"` // in_progress|submitted
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	StartedAt      time.Time  `json:"started_at"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Answer struct {
	ID         string `json:"id"`
	AttemptID  string `json:"attempt_id"`
	QuestionID string `json:"question_id"`
	Selected   Option `json:"selected"`
	IsCorrect  bool   `json:"is_correct"`
}

// Session is what BeginOrResume hands back to the caller: everything a
// client needs to render the test, including answers saved by an earlier
// submit retry that rolled back.
type Session struct {
	AttemptID        string            `json:"attempt_id"`
	RemainingSeconds int64             `json:"remaining_seconds"`
	Questions        []Question        `json:"questions"`
	SavedAnswers     map[string]Option `json:"saved_answers"`
}

// Result is the finalized outcome of a Submit.
type Result struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"total_questions"`
}
