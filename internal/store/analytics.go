package store

import (
	"context"
	"time"
)

func (s *Store) LogEvent(ctx context.Context, eventType string, userID int64, data string) error {
	_, err := s.sql.ExecContext(ctx,
		`INSERT INTO analytics_events(event_type,user_id,data,created_at) VALUES(?,?,?,?)`,
		eventType, userID, data, time.Now().Unix())
	return err
}

// EventCounts aggregates a user's events since the given time, keyed by event
// type. Feeds the engagement signal used for campaign personalization.
func (s *Store) EventCounts(ctx context.Context, userID int64, since time.Time) (map[string]int, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT event_type, COUNT(1) FROM analytics_events
		 WHERE user_id=? AND created_at >= ?
		 GROUP BY event_type`, userID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

type ActionCount struct {
	EventType string
	Count     int
}

func (s *Store) PopularActions(ctx context.Context, since time.Time, limit int) ([]ActionCount, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT event_type, COUNT(1) AS n FROM analytics_events
		 WHERE created_at >= ?
		 GROUP BY event_type ORDER BY n DESC LIMIT ?`, since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActionCount
	for rows.Next() {
		var a ActionCount
		if err := rows.Scan(&a.EventType, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CleanupEventsBefore drops analytics rows older than the cutoff and reports
// how many went away.
func (s *Store) CleanupEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.sql.ExecContext(ctx, `DELETE FROM analytics_events WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
