package campaign

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

type fakeRunStore struct {
	mu      sync.Mutex
	runs    map[string]store.CampaignRun
	targets []int64
}

func (f *fakeRunStore) GetRun(_ context.Context, id string) (store.CampaignRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return store.CampaignRun{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeRunStore) TargetIDs(_ context.Context, _ store.Selector) ([]int64, error) {
	return f.targets, nil
}

func (f *fakeRunStore) FinalizeRun(_ context.Context, id string, targeted, sent, failed int, status store.RunStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[id]
	if r.Status != store.RunPending {
		return false, nil
	}
	r.Targeted, r.Sent, r.Failed, r.Status = targeted, sent, failed, status
	f.runs[id] = r
	return true, nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []int64
	failFor map[int64]bool
}

func (f *fakeSender) Send(_ context.Context, userID int64, _ Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[userID] {
		return errors.New("blocked the bot")
	}
	f.sent = append(f.sent, userID)
	return nil
}

func newTestExecutor(rs *fakeRunStore, s *fakeSender) *Executor {
	// High rate so tests never sit in the limiter.
	return NewExecutor(rs, s, nil, 600000, zap.NewNop())
}

func pendingRun(id string) store.CampaignRun {
	return store.CampaignRun{
		ID:          id,
		Selector:    store.SelectorAll,
		MessageText: "hello",
		Status:      store.RunPending,
	}
}

func TestExecuteAllSuccess(t *testing.T) {
	rs := &fakeRunStore{
		runs:    map[string]store.CampaignRun{"r1": pendingRun("r1")},
		targets: []int64{1, 2, 3, 4, 5},
	}
	sender := &fakeSender{}
	exec := newTestExecutor(rs, sender)

	res, err := exec.Execute(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, Result{Targeted: 5, Sent: 5, Failed: 0}, res)
	assert.Equal(t, store.RunCompleted, rs.runs["r1"].Status)
	assert.Len(t, sender.sent, 5)
}

func TestExecuteFailuresIsolated(t *testing.T) {
	rs := &fakeRunStore{
		runs:    map[string]store.CampaignRun{"r1": pendingRun("r1")},
		targets: []int64{1, 2, 3, 4},
	}
	sender := &fakeSender{failFor: map[int64]bool{2: true, 4: true}}
	exec := newTestExecutor(rs, sender)

	res, err := exec.Execute(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, Result{Targeted: 4, Sent: 2, Failed: 2}, res)
	assert.Equal(t, store.RunCompleted, rs.runs["r1"].Status)
	assert.Equal(t, []int64{1, 3}, sender.sent)
}

func TestExecuteFinalizedRunReturnsStoredCounts(t *testing.T) {
	done := pendingRun("r1")
	done.Status = store.RunCompleted
	done.Targeted, done.Sent, done.Failed = 10, 9, 1

	rs := &fakeRunStore{
		runs:    map[string]store.CampaignRun{"r1": done},
		targets: []int64{1, 2, 3},
	}
	sender := &fakeSender{}
	exec := newTestExecutor(rs, sender)

	res, err := exec.Execute(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, Result{Targeted: 10, Sent: 9, Failed: 1}, res)
	assert.Empty(t, sender.sent, "finalized run must not send again")
}

func TestExecuteUnknownRun(t *testing.T) {
	rs := &fakeRunStore{runs: map[string]store.CampaignRun{}}
	exec := newTestExecutor(rs, &fakeSender{})

	_, err := exec.Execute(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExecuteCancelledContext(t *testing.T) {
	rs := &fakeRunStore{
		runs:    map[string]store.CampaignRun{"r1": pendingRun("r1")},
		targets: []int64{1, 2, 3},
	}
	sender := &fakeSender{}
	exec := newTestExecutor(rs, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := exec.Execute(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Targeted)
	assert.Zero(t, res.Sent)
	assert.Equal(t, store.RunCancelled, rs.runs["r1"].Status)
}
