package campaign

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

const (
	GroupA = "A"
	GroupB = "B"

	// minDetectablePP is the click-through difference, in percentage points,
	// below which the test result reads as noise.
	minDetectablePP = 2.0
	maxConfidence   = 95.0
)

var ErrBadRatio = errors.New("split ratio must be inside (0, 1)")

// Split shuffles the pool and divides it into two disjoint groups; group A
// receives floor(len*ratio) members and group B the rest. The input slice
// is not modified.
func Split(pool []int64, ratio float64) (a, b []int64, err error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, ErrBadRatio
	}
	shuffled := make([]int64, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	cut := int(float64(len(shuffled)) * ratio)
	return shuffled[:cut], shuffled[cut:], nil
}

// Verdict is the outcome of comparing the two groups. Confidence is a rough
// heuristic scaled from the observed difference, not a statistical test.
type Verdict struct {
	Significant bool
	Winner      string
	Confidence  float64
	DeltaPP     float64
	Reason      string
}

// Analyze compares click-through rates of the two groups. Either group below
// minSample, or a difference under the detectable threshold, yields a
// no-signal verdict.
func Analyze(a, b store.GroupMetrics, minSample int) Verdict {
	if a.Sample < minSample || b.Sample < minSample {
		return Verdict{Reason: fmt.Sprintf("insufficient sample (need %d per group)", minSample)}
	}

	deltaPP := (ctr(a) - ctr(b)) * 100
	if math.Abs(deltaPP) < minDetectablePP {
		return Verdict{
			DeltaPP: deltaPP,
			Reason:  fmt.Sprintf("difference %.1fpp below %.0fpp threshold", deltaPP, minDetectablePP),
		}
	}

	winner := GroupA
	if deltaPP < 0 {
		winner = GroupB
	}
	return Verdict{
		Significant: true,
		Winner:      winner,
		Confidence:  math.Min(maxConfidence, 10*math.Abs(deltaPP)),
		DeltaPP:     deltaPP,
		Reason:      fmt.Sprintf("group %s leads by %.1fpp click-through", winner, math.Abs(deltaPP)),
	}
}

func ctr(m store.GroupMetrics) float64 {
	if m.Opened == 0 {
		return 0
	}
	return float64(m.Clicked) / float64(m.Opened)
}

// ABStore is the slice of the ledger the test runner needs.
type ABStore interface {
	GetABTest(ctx context.Context, id string) (store.ABTest, error)
	SetABTestStatus(ctx context.Context, id, status string) error
	SamplePool(ctx context.Context, limit int) ([]int64, error)
	RecordExposure(ctx context.Context, testID string, userID int64, group string) error
	MarkDelivered(ctx context.Context, testID string, userID int64) error
	GroupMetricsFor(ctx context.Context, testID, group string) (store.GroupMetrics, error)
	SaveVerdict(ctx context.Context, testID string, winner string, confidence, delta float64, reason string) error
}

// ABRunner delivers the two message variants to a sampled pool and records
// exposures for later analysis.
type ABRunner struct {
	store     ABStore
	sender    Sender
	limiter   *rate.Limiter
	poolSize  int
	minSample int
	log       *zap.Logger
}

func NewABRunner(s ABStore, sender Sender, ratePerMinute, poolSize, minSample int, log *zap.Logger) *ABRunner {
	return &ABRunner{
		store:     s,
		sender:    sender,
		limiter:   newSendLimiter(ratePerMinute),
		poolSize:  poolSize,
		minSample: minSample,
		log:       log,
	}
}

// Run splits a fresh sample of the audience per the test's ratio and sends
// each group its variant. Send failures are skipped; only reached users are
// marked delivered.
func (r *ABRunner) Run(ctx context.Context, testID string) error {
	test, err := r.store.GetABTest(ctx, testID)
	if err != nil {
		return fmt.Errorf("load test %s: %w", testID, err)
	}
	if test.Status != "created" {
		return fmt.Errorf("test %s already %s", testID, test.Status)
	}

	pool, err := r.store.SamplePool(ctx, r.poolSize)
	if err != nil {
		return fmt.Errorf("sample pool: %w", err)
	}
	groupA, groupB, err := Split(pool, test.Ratio)
	if err != nil {
		return err
	}

	if err := r.store.SetABTestStatus(ctx, testID, "running"); err != nil {
		return err
	}

	sent := r.deliver(ctx, testID, GroupA, groupA, test.VariantA)
	sent += r.deliver(ctx, testID, GroupB, groupB, test.VariantB)

	if err := r.store.SetABTestStatus(ctx, testID, "sent"); err != nil {
		return err
	}
	r.log.Info("ab test delivered",
		zap.String("test", testID),
		zap.Int("pool", len(pool)),
		zap.Int("group_a", len(groupA)),
		zap.Int("group_b", len(groupB)),
		zap.Int("sent", sent))
	return nil
}

func (r *ABRunner) deliver(ctx context.Context, testID, group string, users []int64, text string) int {
	var sent int
	for _, userID := range users {
		if err := r.limiter.Wait(ctx); err != nil {
			break
		}
		if err := r.store.RecordExposure(ctx, testID, userID, group); err != nil {
			r.log.Warn("record exposure", zap.String("test", testID), zap.Int64("user", userID), zap.Error(err))
			continue
		}
		// The button drives the open/click funnel the analysis reads later.
		p := Payload{Text: text, ButtonText: "👀 مشاهده بیشتر", ButtonData: "abopen|" + testID}
		if err := r.sender.Send(ctx, userID, p); err != nil {
			r.log.Debug("ab variant send failed",
				zap.String("test", testID), zap.Int64("user", userID), zap.Error(err))
			continue
		}
		if err := r.store.MarkDelivered(ctx, testID, userID); err != nil {
			r.log.Warn("mark delivered", zap.String("test", testID), zap.Int64("user", userID), zap.Error(err))
		}
		sent++
	}
	return sent
}

// Analyze compares the recorded groups, persists the verdict, and returns it.
func (r *ABRunner) Analyze(ctx context.Context, testID string) (Verdict, error) {
	ma, err := r.store.GroupMetricsFor(ctx, testID, GroupA)
	if err != nil {
		return Verdict{}, err
	}
	mb, err := r.store.GroupMetricsFor(ctx, testID, GroupB)
	if err != nil {
		return Verdict{}, err
	}

	v := Analyze(ma, mb, r.minSample)
	if err := r.store.SaveVerdict(ctx, testID, v.Winner, v.Confidence, v.DeltaPP, v.Reason); err != nil {
		return Verdict{}, err
	}
	return v, nil
}
