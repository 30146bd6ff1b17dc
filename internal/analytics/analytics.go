package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

// EventStore is the slice of the ledger the tracker reads and writes.
type EventStore interface {
	LogEvent(ctx context.Context, eventType string, userID int64, data string) error
	EventCounts(ctx context.Context, userID int64, since time.Time) (map[string]int, error)
	PopularActions(ctx context.Context, since time.Time, limit int) ([]store.ActionCount, error)
	Stats(ctx context.Context) (store.Stats, error)
}

type Tracker struct {
	events EventStore
	log    *zap.Logger
}

func NewTracker(events EventStore, log *zap.Logger) *Tracker {
	return &Tracker{events: events, log: log}
}

// Track records an event; a lost analytics row is never worth failing the
// user interaction that produced it, so errors are logged and dropped.
func (t *Tracker) Track(ctx context.Context, eventType string, userID int64, data string) {
	if err := t.events.LogEvent(ctx, eventType, userID, data); err != nil {
		t.log.Warn("analytics event dropped", zap.String("type", eventType), zap.Error(err))
	}
}

// SignalFor derives the engagement signal from the last 30 days of events.
func (t *Tracker) SignalFor(ctx context.Context, userID int64) (Signal, error) {
	counts, err := t.events.EventCounts(ctx, userID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return Signal{}, err
	}
	return Signal{
		EngagementScore: Score(counts),
		Interests:       Interests(counts),
	}, nil
}

type Report struct {
	GeneratedAt    time.Time
	Stats          store.Stats
	PopularActions []store.ActionCount
	GrowthRate     float64 // today's joins over total users, percent
	EngagementRate float64 // daily actives over total users, percent
}

func (t *Tracker) Report(ctx context.Context) (Report, error) {
	st, err := t.events.Stats(ctx)
	if err != nil {
		return Report{}, err
	}
	actions, err := t.events.PopularActions(ctx, time.Now().AddDate(0, 0, -7), 5)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		GeneratedAt:    time.Now(),
		Stats:          st,
		PopularActions: actions,
	}
	if st.TotalUsers > 0 {
		r.GrowthRate = float64(st.TodayUsers) / float64(st.TotalUsers) * 100
		r.EngagementRate = float64(st.DailyActive) / float64(st.TotalUsers) * 100
	}
	return r, nil
}
