// Package portal backs the student-facing pages: dashboard, results,
// attendance, fee receipts, news and the photo directory. Reads only; every
// query is scoped to the caller's school, class or student id.
package portal

import "time"

type ResultRow struct {
	AttemptID   string    `json:"attempt_id"`
	TestID      string    `json:"test_id"`
	TestTitle   string    `json:"test_title"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type AttendanceRow struct {
	Term    string    `json:"term"`
	Day     time.Time `json:"day"`
	Present bool      `json:"present"`
}

type FeeReceipt struct {
	ID        string    `json:"id"`
	Term      string    `json:"term"`
	Amount    int64     `json:"amount_cents"`
	Reference string    `json:"reference"`
	PaidAt    time.Time `json:"paid_at"`
}

type NewsPost struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"posted_at"`
}

type DirectoryEntry struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	PhotoURL string `json:"photo_url"`
}

type DashboardSummary struct {
	PublishedTests  int     `json:"published_tests"`
	SubmittedTests  int     `json:"submitted_tests"`
	NewsPosts       int     `json:"news_posts"`
	AttendanceRate  float64 `json:"attendance_rate"`
	FeesPaidCents   int64   `json:"fees_paid_cents"`
	FeeReceiptCount int     `json:"fee_receipt_count"`
}
