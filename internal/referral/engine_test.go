package referral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

type fakeLedger struct {
	users   map[int64]store.User
	content map[int64]store.Content
	edges   map[[2]int64]bool
	claims  map[[2]int64]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:   map[int64]store.User{},
		content: map[int64]store.Content{},
		edges:   map[[2]int64]bool{},
		claims:  map[[2]int64]bool{},
	}
}

func (f *fakeLedger) GetUser(_ context.Context, userID int64) (store.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeLedger) CreateReferral(_ context.Context, referrerID, referredID int64, rewardPoints int) (bool, error) {
	key := [2]int64{referrerID, referredID}
	if f.edges[key] {
		return false, nil
	}
	f.edges[key] = true
	u := f.users[referrerID]
	u.TotalReferrals++
	u.Points += rewardPoints
	f.users[referrerID] = u
	return true, nil
}

func (f *fakeLedger) GetContent(_ context.Context, id int64) (store.Content, error) {
	c, ok := f.content[id]
	if !ok {
		return store.Content{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeLedger) CreateClaim(_ context.Context, userID, contentID int64) (bool, error) {
	key := [2]int64{userID, contentID}
	if f.claims[key] {
		return false, nil
	}
	f.claims[key] = true
	return true, nil
}

func (f *fakeLedger) HasClaim(_ context.Context, userID, contentID int64) (bool, error) {
	return f.claims[[2]int64{userID, contentID}], nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.users[1] = store.User{UserID: 1}
	eng := NewEngine(ledger, 10, zap.NewNop())

	created, err := eng.Register(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, ledger.users[1].TotalReferrals)
	assert.Equal(t, 10, ledger.users[1].Points)

	// Same pair again: no second edge, no second award.
	created, err = eng.Register(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, ledger.users[1].TotalReferrals)
	assert.Equal(t, 10, ledger.users[1].Points)
}

func TestRegisterSelfReferral(t *testing.T) {
	ledger := newFakeLedger()
	ledger.users[1] = store.User{UserID: 1}
	eng := NewEngine(ledger, 10, zap.NewNop())

	created, err := eng.Register(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, ledger.users[1].Points)
}

func TestRegisterUnknownReferrer(t *testing.T) {
	ledger := newFakeLedger()
	eng := NewEngine(ledger, 10, zap.NewNop())

	created, err := eng.Register(context.Background(), 404, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, ledger.edges)
}

func TestClaim(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.users[1] = store.User{UserID: 1, TotalReferrals: 5, Points: 50}
	ledger.content[7] = store.Content{ID: 7, RequiredReferrals: 5, RequiredPoints: 50, IsActive: true}
	ledger.content[8] = store.Content{ID: 8, RequiredReferrals: 20, RequiredPoints: 500, IsActive: true}
	ledger.content[9] = store.Content{ID: 9, IsActive: false}
	eng := NewEngine(ledger, 10, zap.NewNop())

	status, err := eng.Claim(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, Claimed, status)

	status, err = eng.Claim(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, AlreadyClaimed, status)

	status, err = eng.Claim(ctx, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, NotEligible, status)

	status, err = eng.Claim(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, NotEligible, status)
}

func TestClaimSurvivesDeactivation(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	ledger.users[1] = store.User{UserID: 1, TotalReferrals: 5, Points: 50}
	ledger.content[7] = store.Content{ID: 7, RequiredReferrals: 5, RequiredPoints: 50, IsActive: true}
	eng := NewEngine(ledger, 10, zap.NewNop())

	status, err := eng.Claim(ctx, 1, 7)
	require.NoError(t, err)
	require.Equal(t, Claimed, status)

	// Deactivating the content later must not turn the recorded claim
	// into a NotEligible answer.
	c := ledger.content[7]
	c.IsActive = false
	ledger.content[7] = c

	status, err = eng.Claim(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, AlreadyClaimed, status)
}
