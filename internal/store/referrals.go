package store

import (
	"context"
	"time"
)

// CreateReferral is the atomic check-and-insert primitive for referral edges.
// The edge insert and the referrer counter update happen in one transaction;
// the UNIQUE(referrer_id, referred_id) constraint makes a concurrent duplicate
// a no-op instead of a double count. Returns false when the edge already
// existed.
func (s *Store) CreateReferral(ctx context.Context, referrerID, referredID int64, rewardPoints int) (bool, error) {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO referrals(referrer_id,referred_id,created_at,reward_given) VALUES(?,?,?,1)
		 ON CONFLICT(referrer_id,referred_id) DO NOTHING`,
		referrerID, referredID, time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// Edge already recorded; nothing to award.
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET total_referrals=total_referrals+1, points=points+? WHERE user_id=?`,
		rewardPoints, referrerID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (s *Store) ReferralCount(ctx context.Context, referrerID int64) (int, error) {
	var n int
	err := s.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM referrals WHERE referrer_id=?`, referrerID).Scan(&n)
	return n, err
}
