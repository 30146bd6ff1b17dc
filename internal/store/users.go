package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type User struct {
	UserID         int64
	Username       string
	FirstName      string
	LastName       string
	ReferrerID     sql.NullInt64
	IsMember       bool
	TotalReferrals int
	Points         int
	IsBanned       bool
	JoinDate       time.Time
	LastActivity   time.Time
}

// UpsertUser creates the user on first contact. The referrer is set once at
// creation and never reassigned; repeated calls only refresh the name fields.
func (s *Store) UpsertUser(ctx context.Context, userID int64, username, firstName, lastName string, referrerID *int64) error {
	now := time.Now().Unix()
	var ref any
	if referrerID != nil {
		ref = *referrerID
	}
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO users(user_id,username,first_name,last_name,referrer_id,join_date,last_activity)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   username=excluded.username, first_name=excluded.first_name, last_name=excluded.last_name`,
		userID, username, firstName, lastName, ref, now, now)
	return err
}

func (s *Store) GetUser(ctx context.Context, userID int64) (User, error) {
	var u User
	var isMember, isBanned int
	var join, activity int64
	err := s.sql.QueryRowContext(ctx,
		`SELECT user_id,username,first_name,last_name,referrer_id,is_member,total_referrals,points,is_banned,join_date,last_activity
		 FROM users WHERE user_id=?`, userID).
		Scan(&u.UserID, &u.Username, &u.FirstName, &u.LastName, &u.ReferrerID,
			&isMember, &u.TotalReferrals, &u.Points, &isBanned, &join, &activity)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.IsMember = isMember == 1
	u.IsBanned = isBanned == 1
	u.JoinDate = time.Unix(join, 0)
	u.LastActivity = time.Unix(activity, 0)
	return u, nil
}

// TouchActivity bumps last_activity; called on every inbound update.
func (s *Store) TouchActivity(ctx context.Context, userID int64) error {
	_, err := s.sql.ExecContext(ctx, `UPDATE users SET last_activity=? WHERE user_id=?`, time.Now().Unix(), userID)
	return err
}

func (s *Store) SetMembership(ctx context.Context, userID int64, isMember bool) error {
	val := 0
	if isMember {
		val = 1
	}
	_, err := s.sql.ExecContext(ctx, `UPDATE users SET is_member=? WHERE user_id=?`, val, userID)
	return err
}

// SetBanned soft-deletes; users are never hard-deleted.
func (s *Store) SetBanned(ctx context.Context, userID int64, banned bool) error {
	val := 0
	if banned {
		val = 1
	}
	_, err := s.sql.ExecContext(ctx, `UPDATE users SET is_banned=? WHERE user_id=?`, val, userID)
	return err
}

func (s *Store) TopReferrers(ctx context.Context, limit int) ([]User, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT user_id,first_name,total_referrals,points FROM users
		 WHERE total_referrals > 0
		 ORDER BY total_referrals DESC, points DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.FirstName, &u.TotalReferrals, &u.Points); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type Stats struct {
	TotalUsers     int
	ActiveMembers  int
	TodayUsers     int
	TotalReferrals int
	WeekReferrals  int
	DailyActive    int
	WeeklyActive   int
	MonthlyActive  int
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()

	var st Stats
	queries := []struct {
		dst  *int
		q    string
		args []any
	}{
		{&st.TotalUsers, `SELECT COUNT(1) FROM users`, nil},
		{&st.ActiveMembers, `SELECT COUNT(1) FROM users WHERE is_member=1`, nil},
		{&st.TodayUsers, `SELECT COUNT(1) FROM users WHERE join_date >= ?`, []any{dayStart}},
		{&st.TotalReferrals, `SELECT COUNT(1) FROM referrals`, nil},
		{&st.WeekReferrals, `SELECT COUNT(1) FROM referrals WHERE created_at >= ?`, []any{now.AddDate(0, 0, -7).Unix()}},
		{&st.DailyActive, `SELECT COUNT(1) FROM users WHERE last_activity >= ?`, []any{now.AddDate(0, 0, -1).Unix()}},
		{&st.WeeklyActive, `SELECT COUNT(1) FROM users WHERE last_activity >= ?`, []any{now.AddDate(0, 0, -7).Unix()}},
		{&st.MonthlyActive, `SELECT COUNT(1) FROM users WHERE last_activity >= ?`, []any{now.AddDate(0, 0, -30).Unix()}},
	}
	for _, q := range queries {
		if err := s.sql.QueryRowContext(ctx, q.q, q.args...).Scan(q.dst); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}
