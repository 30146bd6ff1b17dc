package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Selector names a rule resolving to a concrete set of target user IDs.
type Selector string

const (
	SelectorAll      Selector = "all"
	SelectorActive   Selector = "active"   // last activity within 7 days
	SelectorNew      Selector = "new"      // joined within 7 days
	SelectorTop      Selector = "top"      // >= 5 referrals, best first, capped
	SelectorInactive Selector = "inactive" // last activity older than 30 days
)

// TargetIDs resolves a selector to user IDs. Banned users are excluded from
// every selector. An unknown selector deliberately resolves like SelectorAll;
// callers that want to reject unknown values must do so before persisting.
func (s *Store) TargetIDs(ctx context.Context, sel Selector) ([]int64, error) {
	now := time.Now()
	var q string
	var args []any
	switch sel {
	case SelectorActive:
		q = `SELECT user_id FROM users WHERE is_banned=0 AND last_activity >= ?`
		args = append(args, now.AddDate(0, 0, -7).Unix())
	case SelectorNew:
		q = `SELECT user_id FROM users WHERE is_banned=0 AND join_date >= ?`
		args = append(args, now.AddDate(0, 0, -7).Unix())
	case SelectorTop:
		q = `SELECT user_id FROM users WHERE is_banned=0 AND total_referrals >= 5
		     ORDER BY total_referrals DESC LIMIT 100`
	case SelectorInactive:
		q = `SELECT user_id FROM users WHERE is_banned=0 AND last_activity < ?`
		args = append(args, now.AddDate(0, 0, -30).Unix())
	default: // SelectorAll and anything unrecognized
		q = `SELECT user_id FROM users WHERE is_banned=0`
	}

	rows, err := s.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SamplePool returns a random sample of non-banned members, used as the
// candidate pool for A/B tests.
func (s *Store) SamplePool(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT user_id FROM users WHERE is_banned=0 AND is_member=1 ORDER BY RANDOM() LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
)

type CampaignRun struct {
	ID           string
	Selector     Selector
	MessageText  string
	MediaType    string
	MediaFileID  string
	Personalized bool
	ScheduledAt  sql.NullInt64
	Executed     bool
	Targeted     int
	Sent         int
	Failed       int
	Status       RunStatus
	CreatedBy    int64
	CreatedAt    time.Time
}

func (s *Store) CreateRun(ctx context.Context, r CampaignRun) error {
	var sched any
	if r.ScheduledAt.Valid {
		sched = r.ScheduledAt.Int64
	}
	personalized := 0
	if r.Personalized {
		personalized = 1
	}
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO campaign_runs(id,selector,message_text,media_type,media_file_id,personalized,scheduled_at,created_by,created_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		r.ID, string(r.Selector), r.MessageText, r.MediaType, r.MediaFileID, personalized, sched, r.CreatedBy, time.Now().Unix())
	return err
}

func (s *Store) GetRun(ctx context.Context, id string) (CampaignRun, error) {
	var r CampaignRun
	var sel, status string
	var personalized, executed int
	var created int64
	err := s.sql.QueryRowContext(ctx,
		`SELECT id,selector,message_text,media_type,media_file_id,personalized,scheduled_at,executed,targeted,sent,failed,status,created_by,created_at
		 FROM campaign_runs WHERE id=?`, id).
		Scan(&r.ID, &sel, &r.MessageText, &r.MediaType, &r.MediaFileID, &personalized,
			&r.ScheduledAt, &executed, &r.Targeted, &r.Sent, &r.Failed, &status, &r.CreatedBy, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return CampaignRun{}, ErrNotFound
	}
	if err != nil {
		return CampaignRun{}, err
	}
	r.Selector = Selector(sel)
	r.Status = RunStatus(status)
	r.Personalized = personalized == 1
	r.Executed = executed == 1
	r.CreatedAt = time.Unix(created, 0)
	return r, nil
}

// DueRuns lists scheduled runs whose time has passed and that have not been
// claimed yet. Runs missed while the process was down show up at next wake.
func (s *Store) DueRuns(ctx context.Context, now time.Time) ([]CampaignRun, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT id FROM campaign_runs
		 WHERE executed=0 AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		 ORDER BY scheduled_at ASC`, now.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []CampaignRun
	for _, id := range ids {
		r, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ClaimRun flips the executed flag with a rows-affected gate, so a run fires
// at most once even when two triggers race on it.
func (s *Store) ClaimRun(ctx context.Context, id string) (bool, error) {
	res, err := s.sql.ExecContext(ctx,
		`UPDATE campaign_runs SET executed=1, executed_at=? WHERE id=? AND executed=0`,
		time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FinalizeRun appends the final counts exactly once. A second finalization for
// the same run is a no-op returning false; the stored counts stay untouched.
func (s *Store) FinalizeRun(ctx context.Context, id string, targeted, sent, failed int, status RunStatus) (bool, error) {
	res, err := s.sql.ExecContext(ctx,
		`UPDATE campaign_runs SET targeted=?, sent=?, failed=?, status=?, completed_at=?
		 WHERE id=? AND completed_at IS NULL`,
		targeted, sent, failed, string(status), time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]CampaignRun, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT id FROM campaign_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var out []CampaignRun
	for _, id := range ids {
		r, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
