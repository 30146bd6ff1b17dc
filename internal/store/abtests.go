package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type ABTest struct {
	ID        string
	VariantA  string
	VariantB  string
	Ratio     float64
	Status    string
	Winner    sql.NullString
	CreatedAt time.Time
}

func (s *Store) CreateABTest(ctx context.Context, t ABTest) error {
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO ab_tests(id,variant_a,variant_b,ratio,status,created_at) VALUES(?,?,?,?,'created',?)`,
		t.ID, t.VariantA, t.VariantB, t.Ratio, time.Now().Unix())
	return err
}

func (s *Store) GetABTest(ctx context.Context, id string) (ABTest, error) {
	var t ABTest
	var created int64
	err := s.sql.QueryRowContext(ctx,
		`SELECT id,variant_a,variant_b,ratio,status,winner,created_at FROM ab_tests WHERE id=?`, id).
		Scan(&t.ID, &t.VariantA, &t.VariantB, &t.Ratio, &t.Status, &t.Winner, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return ABTest{}, ErrNotFound
	}
	if err != nil {
		return ABTest{}, err
	}
	t.CreatedAt = time.Unix(created, 0)
	return t, nil
}

func (s *Store) ListABTests(ctx context.Context, limit int) ([]ABTest, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT id,variant_a,variant_b,ratio,status,winner,created_at
		 FROM ab_tests ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ABTest
	for rows.Next() {
		var t ABTest
		var created int64
		if err := rows.Scan(&t.ID, &t.VariantA, &t.VariantB, &t.Ratio, &t.Status, &t.Winner, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(created, 0)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SetABTestStatus(ctx context.Context, id, status string) error {
	_, err := s.sql.ExecContext(ctx, `UPDATE ab_tests SET status=? WHERE id=?`, status, id)
	return err
}

// RecordExposure notes which group a user fell into, once per test. A repeat
// of the same (test, user) pair is ignored so a user's exposure is never
// double counted.
func (s *Store) RecordExposure(ctx context.Context, testID string, userID int64, group string) error {
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO ab_exposures(test_id,user_id,grp,created_at) VALUES(?,?,?,?)
		 ON CONFLICT(test_id,user_id) DO NOTHING`,
		testID, userID, group, time.Now().Unix())
	return err
}

func (s *Store) MarkDelivered(ctx context.Context, testID string, userID int64) error {
	_, err := s.sql.ExecContext(ctx, `UPDATE ab_exposures SET delivered=1 WHERE test_id=? AND user_id=?`, testID, userID)
	return err
}

func (s *Store) MarkOpened(ctx context.Context, testID string, userID int64) error {
	_, err := s.sql.ExecContext(ctx, `UPDATE ab_exposures SET opened=1 WHERE test_id=? AND user_id=?`, testID, userID)
	return err
}

func (s *Store) MarkClicked(ctx context.Context, testID string, userID int64) error {
	_, err := s.sql.ExecContext(ctx, `UPDATE ab_exposures SET clicked=1 WHERE test_id=? AND user_id=?`, testID, userID)
	return err
}

type GroupMetrics struct {
	Sample    int
	Delivered int
	Opened    int
	Clicked   int
}

func (s *Store) GroupMetricsFor(ctx context.Context, testID, group string) (GroupMetrics, error) {
	var m GroupMetrics
	err := s.sql.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(delivered),0),
		        COALESCE(SUM(opened),0),
		        COALESCE(SUM(clicked),0)
		 FROM ab_exposures WHERE test_id=? AND grp=?`, testID, group).
		Scan(&m.Sample, &m.Delivered, &m.Opened, &m.Clicked)
	return m, err
}

// SaveVerdict records the analysis outcome; nullable fields stay NULL on a
// no-signal verdict.
func (s *Store) SaveVerdict(ctx context.Context, testID string, winner string, confidence, delta float64, reason string) error {
	var w any
	if winner != "" {
		w = winner
	}
	_, err := s.sql.ExecContext(ctx,
		`UPDATE ab_tests SET status='analyzed', winner=?, confidence=?, delta=?, verdict_reason=?, analyzed_at=? WHERE id=?`,
		w, confidence, delta, reason, time.Now().Unix(), testID)
	return err
}
