package referral

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/metrics"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

// Ledger is the slice of the store the engine needs.
type Ledger interface {
	GetUser(ctx context.Context, userID int64) (store.User, error)
	CreateReferral(ctx context.Context, referrerID, referredID int64, rewardPoints int) (bool, error)
	GetContent(ctx context.Context, id int64) (store.Content, error)
	CreateClaim(ctx context.Context, userID, contentID int64) (bool, error)
	HasClaim(ctx context.Context, userID, contentID int64) (bool, error)
}

// Engine validates and records referral edges and reward claims. It never
// sends notifications itself; callers act on the returned signals.
type Engine struct {
	ledger Ledger
	reward int
	log    *zap.Logger
}

func NewEngine(ledger Ledger, rewardPoints int, log *zap.Logger) *Engine {
	return &Engine{ledger: ledger, reward: rewardPoints, log: log}
}

// Register records the (referrer, referred) edge exactly once and awards the
// referrer +1 referral and the configured points. Self-referrals are silently
// ignored. Returns true only when this call created the edge.
func (e *Engine) Register(ctx context.Context, referrerID, referredID int64) (bool, error) {
	if referrerID == referredID {
		return false, nil
	}
	if _, err := e.ledger.GetUser(ctx, referrerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Referral code pointing at a user we have never seen.
			return false, nil
		}
		return false, err
	}

	created, err := e.ledger.CreateReferral(ctx, referrerID, referredID, e.reward)
	if err != nil {
		return false, fmt.Errorf("create referral %d->%d: %w", referrerID, referredID, err)
	}
	if created {
		metrics.ReferralsTotal.Inc()
		e.log.Info("referral recorded",
			zap.Int64("referrer", referrerID),
			zap.Int64("referred", referredID),
			zap.Int("points", e.reward))
	}
	return created, nil
}

type ClaimStatus int

const (
	Claimed ClaimStatus = iota
	AlreadyClaimed
	NotEligible
)

// Claim re-checks eligibility against the stored counters at claim time, then
// records the claim. A duplicate (user, content) pair yields AlreadyClaimed
// instead of a second row.
func (e *Engine) Claim(ctx context.Context, userID, contentID int64) (ClaimStatus, error) {
	u, err := e.ledger.GetUser(ctx, userID)
	if err != nil {
		return NotEligible, err
	}
	c, err := e.ledger.GetContent(ctx, contentID)
	if err != nil {
		return NotEligible, err
	}
	if !c.IsActive || u.TotalReferrals < c.RequiredReferrals || u.Points < c.RequiredPoints {
		// A recorded claim stays AlreadyClaimed even after the content is
		// deactivated or its thresholds change.
		if has, err := e.ledger.HasClaim(ctx, userID, contentID); err == nil && has {
			return AlreadyClaimed, nil
		}
		return NotEligible, nil
	}

	created, err := e.ledger.CreateClaim(ctx, userID, contentID)
	if err != nil {
		return NotEligible, err
	}
	if !created {
		return AlreadyClaimed, nil
	}
	metrics.ClaimsTotal.Inc()
	return Claimed, nil
}
