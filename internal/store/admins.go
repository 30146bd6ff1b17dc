package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Admin struct {
	UserID  int64
	IsSuper bool
}

func (s *Store) AdminCount(ctx context.Context) (int, error) {
	var c int
	if err := s.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM admins`).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (s *Store) IsAdmin(ctx context.Context, userID int64) (bool, bool, error) {
	var isSuper int
	err := s.sql.QueryRowContext(ctx, `SELECT is_super FROM admins WHERE user_id=?`, userID).Scan(&isSuper)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, isSuper == 1, nil
}

func (s *Store) AddAdmin(ctx context.Context, userID int64, super bool) error {
	isSuper := 0
	if super {
		isSuper = 1
	}
	_, err := s.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO admins(user_id,is_super,created_at) VALUES(?,?,?)`,
		userID, isSuper, time.Now().Unix())
	return err
}

func (s *Store) RemoveAdmin(ctx context.Context, userID int64) error {
	_, err := s.sql.ExecContext(ctx, `DELETE FROM admins WHERE user_id=?`, userID)
	return err
}

func (s *Store) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := s.sql.QueryContext(ctx, `SELECT user_id,is_super FROM admins ORDER BY is_super DESC, user_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Admin
	for rows.Next() {
		var a Admin
		var isSuper int
		if err := rows.Scan(&a.UserID, &isSuper); err != nil {
			return nil, err
		}
		a.IsSuper = isSuper == 1
		out = append(out, a)
	}
	return out, rows.Err()
}

// SeedAdmins installs the configured admin list on first boot only.
func (s *Store) SeedAdmins(ctx context.Context, initialAdmins []int64) error {
	count, err := s.AdminCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 || len(initialAdmins) == 0 {
		return nil
	}
	for i, id := range initialAdmins {
		if err := s.AddAdmin(ctx, id, i == 0); err != nil {
			return err
		}
	}
	return nil
}
