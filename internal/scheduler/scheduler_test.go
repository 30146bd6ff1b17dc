package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/campaign"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

type fakeJobStore struct {
	due     []store.CampaignRun
	claimed map[string]bool
	stats   store.Stats
	top     []store.User
	events  []string
	cleaned int64
}

func (f *fakeJobStore) DueRuns(_ context.Context, _ time.Time) ([]store.CampaignRun, error) {
	return f.due, nil
}

func (f *fakeJobStore) ClaimRun(_ context.Context, id string) (bool, error) {
	if f.claimed[id] {
		return false, nil
	}
	f.claimed[id] = true
	return true, nil
}

func (f *fakeJobStore) Stats(_ context.Context) (store.Stats, error) { return f.stats, nil }

func (f *fakeJobStore) TopReferrers(_ context.Context, _ int) ([]store.User, error) {
	return f.top, nil
}

func (f *fakeJobStore) LogEvent(_ context.Context, eventType string, _ int64, _ string) error {
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeJobStore) CleanupEventsBefore(_ context.Context, _ time.Time) (int64, error) {
	return f.cleaned, nil
}

type fakeRunner struct {
	executed []string
}

func (f *fakeRunner) Execute(_ context.Context, runID string) (campaign.Result, error) {
	f.executed = append(f.executed, runID)
	return campaign.Result{Targeted: 1, Sent: 1}, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, text string) {
	f.messages = append(f.messages, text)
}

func newTestScheduler(t *testing.T, st *fakeJobStore, r *fakeRunner, n *fakeNotifier) *Scheduler {
	t.Helper()
	s, err := New(st, r, n, 90, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestFireDueRuns(t *testing.T) {
	st := &fakeJobStore{
		due: []store.CampaignRun{
			{ID: "r1", Status: store.RunPending},
			{ID: "r2", Status: store.RunPending},
		},
		claimed: map[string]bool{"r2": true}, // someone else already claimed it
	}
	runner := &fakeRunner{}
	s := newTestScheduler(t, st, runner, &fakeNotifier{})

	s.fireDueRuns()
	assert.Equal(t, []string{"r1"}, runner.executed, "only freshly claimed runs execute")

	// A second scan over the same list fires nothing.
	runner.executed = nil
	s.fireDueRuns()
	assert.Empty(t, runner.executed)
}

func TestDailyStats(t *testing.T) {
	st := &fakeJobStore{
		claimed: map[string]bool{},
		stats:   store.Stats{TotalUsers: 100, ActiveMembers: 80, TodayUsers: 5, TotalReferrals: 40},
	}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, st, &fakeRunner{}, notifier)

	s.dailyStats()
	assert.Equal(t, []string{"daily_stats"}, st.events)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "آمار روزانه")
}

func TestWeeklyLeaderboardSkipsWhenEmpty(t *testing.T) {
	st := &fakeJobStore{claimed: map[string]bool{}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, st, &fakeRunner{}, notifier)

	s.weeklyLeaderboard()
	assert.Empty(t, notifier.messages)

	st.top = []store.User{{UserID: 1, FirstName: "Ali", TotalReferrals: 12}}
	s.weeklyLeaderboard()
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "برترین دعوت‌کنندگان")
}
