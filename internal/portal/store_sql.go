package portal

import (
	"context"
	"database/sql"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) ListResults(ctx context.Context, studentID string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, t.id, t.title, a.score, a.total_questions, a.submitted_at
		FROM attempts a
		JOIN tests t ON t.id = a.test_id
		WHERE a.student_id=$1 AND a.status='submitted'
		ORDER BY a.submitted_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ResultRow, 0)
	for rows.Next() {
		var r ResultRow
		var submitted int64
		if err := rows.Scan(&r.AttemptID, &r.TestID, &r.TestTitle, &r.Score, &r.Total, &submitted); err != nil {
			return nil, err
		}
		r.SubmittedAt = time.Unix(submitted, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListAttendance(ctx context.Context, studentID, term string) ([]AttendanceRow, error) {
	q := `SELECT term, day, present FROM attendance WHERE student_id=$1`
	args := []interface{}{studentID}
	if term != "" {
		q += ` AND term=$2`
		args = append(args, term)
	}
	q += ` ORDER BY day`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AttendanceRow, 0)
	for rows.Next() {
		var r AttendanceRow
		var day int64
		if err := rows.Scan(&r.Term, &day, &r.Present); err != nil {
			return nil, err
		}
		r.Day = time.Unix(day, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListFeeReceipts(ctx context.Context, studentID string) ([]FeeReceipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, term, amount_cents, reference, paid_at
		FROM fee_payments WHERE student_id=$1 ORDER BY paid_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FeeReceipt, 0)
	for rows.Next() {
		var r FeeReceipt
		var paid int64
		if err := rows.Scan(&r.ID, &r.Term, &r.Amount, &r.Reference, &paid); err != nil {
			return nil, err
		}
		r.PaidAt = time.Unix(paid, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListNews(ctx context.Context, schoolID string, limit int) ([]NewsPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, posted_at
		FROM news_posts WHERE school_id=$1 AND published=$2
		ORDER BY posted_at DESC LIMIT $3`, schoolID, true, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]NewsPost, 0)
	for rows.Next() {
		var p NewsPost
		var posted int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &posted); err != nil {
			return nil, err
		}
		p.PostedAt = time.Unix(posted, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListClassmates(ctx context.Context, classID string) ([]DirectoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, photo_url
		FROM users WHERE class_id=$1 AND role='student'
		ORDER BY full_name`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DirectoryEntry, 0)
	for rows.Next() {
		var e DirectoryEntry
		if err := rows.Scan(&e.UserID, &e.FullName, &e.PhotoURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) DashboardSummary(ctx context.Context, schoolID, classID, studentID string) (DashboardSummary, error) {
	var d DashboardSummary
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tests WHERE class_id=$1 AND status='published'`, classID).
		Scan(&d.PublishedTests); err != nil {
		return d, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE student_id=$1 AND status='submitted'`, studentID).
		Scan(&d.SubmittedTests); err != nil {
		return d, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM news_posts WHERE school_id=$1 AND published=$2`, schoolID, true).
		Scan(&d.NewsPosts); err != nil {
		return d, err
	}
	var days, present int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN present THEN 1 ELSE 0 END), 0)
		FROM attendance WHERE student_id=$1`, studentID).Scan(&days, &present); err != nil {
		return d, err
	}
	if days > 0 {
		d.AttendanceRate = float64(present) / float64(days)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM fee_payments WHERE student_id=$1`, studentID).
		Scan(&d.FeeReceiptCount, &d.FeesPaidCents); err != nil {
		return d, err
	}
	return d, nil
}
