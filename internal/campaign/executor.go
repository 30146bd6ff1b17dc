package campaign

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Armin-kho/channel-growth-bot/internal/analytics"
	"github.com/Armin-kho/channel-growth-bot/internal/metrics"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

// Payload is one message to deliver: text plus an optional media reference.
// ButtonText/ButtonData attach one inline callback button when both are set.
type Payload struct {
	Text        string
	MediaType   string // "", "photo", "video"
	MediaFileID string
	ButtonText  string
	ButtonData  string
}

// Sender is the messaging collaborator boundary. Errors from Send are
// per-user failures, tallied and never propagated.
type Sender interface {
	Send(ctx context.Context, userID int64, p Payload) error
}

// SignalSource supplies the per-user engagement signal for personalization.
type SignalSource interface {
	SignalFor(ctx context.Context, userID int64) (analytics.Signal, error)
}

// RunStore is the slice of the ledger the executor needs.
type RunStore interface {
	GetRun(ctx context.Context, id string) (store.CampaignRun, error)
	TargetIDs(ctx context.Context, sel store.Selector) ([]int64, error)
	FinalizeRun(ctx context.Context, id string, targeted, sent, failed int, status store.RunStatus) (bool, error)
}

type Result struct {
	Targeted int
	Sent     int
	Failed   int
}

// Executor runs campaign and broadcast runs: resolves the target set, sends
// one message per user through the rate limiter, and finalizes the counts
// exactly once.
type Executor struct {
	runs    RunStore
	sender  Sender
	signals SignalSource
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewExecutor throttles sends to ratePerMinute; the limiter is shared across
// runs so concurrent executions still respect the aggregate rate.
func NewExecutor(runs RunStore, sender Sender, signals SignalSource, ratePerMinute int, log *zap.Logger) *Executor {
	return &Executor{
		runs:    runs,
		sender:  sender,
		signals: signals,
		limiter: newSendLimiter(ratePerMinute),
		log:     log,
	}
}

func newSendLimiter(perMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Execute performs the run and returns the final counts. Re-executing an
// already finalized run returns the stored result without sending anything.
// Cancelling ctx stops further sends; counts accumulated so far are kept and
// the run finalizes with the cancelled status.
func (e *Executor) Execute(ctx context.Context, runID string) (Result, error) {
	run, err := e.runs.GetRun(ctx, runID)
	if err != nil {
		return Result{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	if run.Status != store.RunPending {
		return Result{Targeted: run.Targeted, Sent: run.Sent, Failed: run.Failed}, nil
	}

	targets, err := e.runs.TargetIDs(ctx, run.Selector)
	if err != nil {
		return Result{}, fmt.Errorf("resolve targets for run %s: %w", runID, err)
	}

	res := Result{Targeted: len(targets)}
	base := Payload{Text: run.MessageText, MediaType: run.MediaType, MediaFileID: run.MediaFileID}

	for _, userID := range targets {
		if err := e.limiter.Wait(ctx); err != nil {
			// ctx cancelled while throttling; stop issuing sends.
			break
		}

		p := base
		if run.Personalized {
			p.Text = e.personalizedText(ctx, userID, run.MessageText)
		}

		if err := e.sender.Send(ctx, userID, p); err != nil {
			res.Failed++
			metrics.SendFailuresTotal.Inc()
			e.log.Debug("campaign send failed",
				zap.String("run", runID), zap.Int64("user", userID), zap.Error(err))
			continue
		}
		res.Sent++
		metrics.SendsTotal.Inc()
	}

	status := store.RunCompleted
	if ctx.Err() != nil {
		status = store.RunCancelled
	}

	wrote, err := e.runs.FinalizeRun(context.WithoutCancel(ctx), runID, res.Targeted, res.Sent, res.Failed, status)
	if err != nil {
		return res, fmt.Errorf("finalize run %s: %w", runID, err)
	}
	if !wrote {
		// A concurrent execution finalized first; its counts win.
		prev, err := e.runs.GetRun(context.WithoutCancel(ctx), runID)
		if err != nil {
			return res, err
		}
		return Result{Targeted: prev.Targeted, Sent: prev.Sent, Failed: prev.Failed}, nil
	}

	metrics.RunsTotal.WithLabelValues(string(status)).Inc()
	e.log.Info("campaign run finalized",
		zap.String("run", runID),
		zap.String("selector", string(run.Selector)),
		zap.String("status", string(status)),
		zap.Int("targeted", res.Targeted),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed))
	return res, nil
}

// personalizedText falls back to the base text on any signal failure; a
// broken signal must never break delivery.
func (e *Executor) personalizedText(ctx context.Context, userID int64, base string) string {
	if e.signals == nil {
		return base
	}
	sig, err := e.signals.SignalFor(ctx, userID)
	if err != nil {
		return base
	}
	return Personalize(base, sig)
}
