package cbt

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLStore implements Catalog and AttemptStore over database/sql. It works
// against both the sqlite and postgres schemas created by internal/db.
// Timestamps are stored as unix seconds.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetPublishedTest(ctx context.Context, testID, classID string) (Test, error) {
	q := `SELECT id, school_id, class_id, title, status, starts_at, ends_at, duration_minutes
		FROM tests WHERE id=$1 AND status='published'`
	args := []interface{}{testID}
	if classID != "" {
		q += ` AND class_id=$2`
		args = append(args, classID)
	}
	row := s.db.QueryRowContext(ctx, q, args...)
	var (
		t                Test
		startsAt, endsAt sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.SchoolID, &t.ClassID, &t.Title, &t.Status, &startsAt, &endsAt, &t.DurationMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, err
	}
	if startsAt.Valid {
		v := time.Unix(startsAt.Int64, 0)
		t.StartsAt = &v
	}
	if endsAt.Valid {
		v := time.Unix(endsAt.Int64, 0)
		t.EndsAt = &v
	}
	return t, nil
}

func (s *SQLStore) GetQuestions(ctx context.Context, testID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, test_id, seq_no, text, option_a, option_b, option_c, option_d, correct_option
		FROM questions WHERE test_id=$1 ORDER BY seq_no, id`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Question, 0)
	for rows.Next() {
		var q Question
		var correct string
		if err := rows.Scan(&q.ID, &q.TestID, &q.SeqNo, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct); err != nil {
			return nil, err
		}
		q.Correct = Option(correct)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindAttempt(ctx context.Context, testID, studentID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, attemptColumns+` WHERE test_id=$1 AND student_id=$2`, testID, studentID)
	return scanAttempt(row)
}

func (s *SQLStore) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, attemptColumns+` WHERE id=$1`, attemptID)
	return scanAttempt(row)
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	now := a.StartedAt.Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, test_id, student_id, status, score, total_questions, started_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,0,$5,$6,$6,$6)`,
		a.ID, a.TestID, a.StudentID, a.Status, a.TotalQuestions, now)
	if err != nil {
		// The unique index on (test_id, student_id) is the arbiter of the
		// create race; losers re-read the winner's row.
		if _, ferr := s.FindAttempt(ctx, a.TestID, a.StudentID); ferr == nil {
			return Attempt{}, ErrDuplicateAttempt
		}
		return Attempt{}, err
	}
	a.CreatedAt = time.Unix(now, 0)
	a.UpdatedAt = a.CreatedAt
	return a, nil
}

func (s *SQLStore) RefreshTotalQuestions(ctx context.Context, attemptID string, total int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET total_questions=$1, updated_at=$2 WHERE id=$3 AND status='in_progress'`,
		total, time.Now().Unix(), attemptID)
	return err
}

func (s *SQLStore) SavedAnswers(ctx context.Context, attemptID string) (map[string]Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, selected_option FROM answers WHERE attempt_id=$1`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]Option{}
	for rows.Next() {
		var qid, sel string
		if err := rows.Scan(&qid, &sel); err != nil {
			return nil, err
		}
		out[qid] = Option(sel)
	}
	return out, rows.Err()
}

func (s *SQLStore) FinalizeAttempt(ctx context.Context, attemptID string, score, total int, submittedAt time.Time, answers []Answer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Compare-and-set: only the caller that flips in_progress -> submitted
	// gets to write answers. A concurrent duplicate observes zero rows.
	res, err := tx.ExecContext(ctx, `
		UPDATE attempts SET status='submitted', score=$1, total_questions=$2, submitted_at=$3, updated_at=$3
		WHERE id=$4 AND status='in_progress'`,
		score, total, submittedAt.Unix(), attemptID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		if err := tx.QueryRowContext(ctx, `SELECT status FROM attempts WHERE id=$1`, attemptID).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAttemptNotFound
			}
			return err
		}
		return ErrAlreadySubmitted
	}

	// Replace rather than merge: a retried submit must not duplicate rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE attempt_id=$1`, attemptID); err != nil {
		return err
	}
	for _, ans := range answers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO answers (id, attempt_id, question_id, selected_option, is_correct)
			VALUES ($1,$2,$3,$4,$5)`,
			ans.ID, ans.AttemptID, ans.QuestionID, string(ans.Selected), ans.IsCorrect); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const attemptColumns = `SELECT id, test_id, student_id, status, score, total_questions, started_at, submitted_at, created_at, updated_at FROM attempts`

func scanAttempt(row *sql.Row) (Attempt, error) {
	var (
		a                    Attempt
		started, created, up int64
		submitted            sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.TestID, &a.StudentID, &a.Status, &a.Score, &a.TotalQuestions, &started, &submitted, &created, &up); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	a.StartedAt = time.Unix(started, 0)
	a.CreatedAt = time.Unix(created, 0)
	a.UpdatedAt = time.Unix(up, 0)
	if submitted.Valid {
		v := time.Unix(submitted.Int64, 0)
		a.SubmittedAt = &v
	}
	return a, nil
}
