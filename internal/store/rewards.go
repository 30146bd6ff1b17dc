package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Content struct {
	ID                int64
	Title             string
	Description       string
	FileID            string
	FileType          string
	RequiredReferrals int
	RequiredPoints    int
	IsActive          bool
}

func (s *Store) AddContent(ctx context.Context, c Content) (int64, error) {
	res, err := s.sql.ExecContext(ctx,
		`INSERT INTO exclusive_content(title,description,file_id,file_type,required_referrals,required_points,is_active,created_at)
		 VALUES(?,?,?,?,?,?,1,?)`,
		c.Title, c.Description, c.FileID, c.FileType, c.RequiredReferrals, c.RequiredPoints, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetContent(ctx context.Context, id int64) (Content, error) {
	var c Content
	var active int
	err := s.sql.QueryRowContext(ctx,
		`SELECT id,title,description,file_id,file_type,required_referrals,required_points,is_active
		 FROM exclusive_content WHERE id=?`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.FileID, &c.FileType, &c.RequiredReferrals, &c.RequiredPoints, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return Content{}, ErrNotFound
	}
	if err != nil {
		return Content{}, err
	}
	c.IsActive = active == 1
	return c, nil
}

func (s *Store) ListActiveContent(ctx context.Context) ([]Content, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT id,title,description,file_id,file_type,required_referrals,required_points,is_active
		 FROM exclusive_content WHERE is_active=1
		 ORDER BY required_referrals ASC, required_points ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Content
	for rows.Next() {
		var c Content
		var active int
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.FileID, &c.FileType,
			&c.RequiredReferrals, &c.RequiredPoints, &active); err != nil {
			return nil, err
		}
		c.IsActive = active == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListContent returns every content row, inactive included, for the admin
// management view.
func (s *Store) ListContent(ctx context.Context) ([]Content, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT id,title,description,file_id,file_type,required_referrals,required_points,is_active
		 FROM exclusive_content ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Content
	for rows.Next() {
		var c Content
		var active int
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.FileID, &c.FileType,
			&c.RequiredReferrals, &c.RequiredPoints, &active); err != nil {
			return nil, err
		}
		c.IsActive = active == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SetContentActive(ctx context.Context, id int64, active bool) error {
	val := 0
	if active {
		val = 1
	}
	_, err := s.sql.ExecContext(ctx, `UPDATE exclusive_content SET is_active=? WHERE id=?`, val, id)
	return err
}

// CreateClaim records a reward claim once per (user, content). Returns false
// when the claim already exists; the unique constraint is the idempotency
// guard, not a prior read.
func (s *Store) CreateClaim(ctx context.Context, userID, contentID int64) (bool, error) {
	res, err := s.sql.ExecContext(ctx,
		`INSERT INTO reward_claims(user_id,content_id,claimed_at) VALUES(?,?,?)
		 ON CONFLICT(user_id,content_id) DO NOTHING`,
		userID, contentID, time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) HasClaim(ctx context.Context, userID, contentID int64) (bool, error) {
	var n int
	err := s.sql.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reward_claims WHERE user_id=? AND content_id=?`, userID, contentID).Scan(&n)
	return n > 0, err
}

func (s *Store) ClaimedContentIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := s.sql.QueryContext(ctx, `SELECT content_id FROM reward_claims WHERE user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
