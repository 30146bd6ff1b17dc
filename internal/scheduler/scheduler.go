package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/botutil"
	"github.com/Armin-kho/channel-growth-bot/internal/campaign"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

// Runner executes a claimed campaign run.
type Runner interface {
	Execute(ctx context.Context, runID string) (campaign.Result, error)
}

// Store is the slice of the ledger the background jobs need.
type Store interface {
	DueRuns(ctx context.Context, now time.Time) ([]store.CampaignRun, error)
	ClaimRun(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (store.Stats, error)
	TopReferrers(ctx context.Context, limit int) ([]store.User, error)
	LogEvent(ctx context.Context, eventType string, userID int64, data string) error
	CleanupEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notifier pushes a text message to all admins.
type Notifier interface {
	NotifyAdmins(ctx context.Context, text string)
}

// Scheduler owns the periodic jobs: firing due scheduled runs, the daily
// stats digest, the weekly referral leaderboard, and analytics retention.
type Scheduler struct {
	sched         gocron.Scheduler
	store         Store
	runner        Runner
	notify        Notifier
	retentionDays int
	log           *zap.Logger
}

func New(st Store, runner Runner, notify Notifier, retentionDays int, log *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(botutil.TehranLoc()))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{
		sched:         sched,
		store:         st,
		runner:        runner,
		notify:        notify,
		retentionDays: retentionDays,
		log:           log,
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(s.fireDueRuns),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("due-run job: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(s.dailyStats),
	); err != nil {
		return nil, fmt.Errorf("daily stats job: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Sunday),
			gocron.NewAtTimes(gocron.NewAtTime(12, 0, 0))),
		gocron.NewTask(s.weeklyLeaderboard),
	); err != nil {
		return nil, fmt.Errorf("weekly leaderboard job: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(s.cleanupAnalytics),
	); err != nil {
		return nil, fmt.Errorf("cleanup job: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

// fireDueRuns claims and executes every scheduled run whose time has passed.
// A run missed while the process was down fires on the first scan after
// startup. The claim gate keeps overlapping scans from double sending.
func (s *Scheduler) fireDueRuns() {
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Minute)
	defer cancel()

	due, err := s.store.DueRuns(ctx, time.Now())
	if err != nil {
		s.log.Error("scan due runs", zap.Error(err))
		return
	}
	for _, run := range due {
		claimed, err := s.store.ClaimRun(ctx, run.ID)
		if err != nil {
			s.log.Error("claim run", zap.String("run", run.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		res, err := s.runner.Execute(ctx, run.ID)
		if err != nil {
			s.log.Error("execute scheduled run", zap.String("run", run.ID), zap.Error(err))
			continue
		}
		s.log.Info("scheduled run executed",
			zap.String("run", run.ID), zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	}
}

func (s *Scheduler) dailyStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := s.store.Stats(ctx)
	if err != nil {
		s.log.Error("daily stats", zap.Error(err))
		return
	}
	if err := s.store.LogEvent(ctx, "daily_stats", 0,
		fmt.Sprintf(`{"users":%d,"members":%d,"referrals":%d}`, st.TotalUsers, st.ActiveMembers, st.TotalReferrals)); err != nil {
		s.log.Warn("log daily stats", zap.Error(err))
	}

	var b strings.Builder
	b.WriteString("📊 آمار روزانه " + botutil.JalaliDate(botutil.NowTehran()) + "\n\n")
	b.WriteString("👥 کل کاربران: " + botutil.FormatCount(st.TotalUsers) + "\n")
	b.WriteString("✅ اعضای فعال: " + botutil.FormatCount(st.ActiveMembers) + "\n")
	b.WriteString("🆕 کاربران امروز: " + botutil.FormatCount(st.TodayUsers) + "\n")
	b.WriteString("🔗 دعوت‌های این هفته: " + botutil.FormatCount(st.WeekReferrals) + "\n")
	s.notify.NotifyAdmins(ctx, b.String())
}

func (s *Scheduler) weeklyLeaderboard() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	top, err := s.store.TopReferrers(ctx, 10)
	if err != nil {
		s.log.Error("weekly leaderboard", zap.Error(err))
		return
	}
	if len(top) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("🏆 برترین دعوت‌کنندگان هفته\n\n")
	for i, u := range top {
		b.WriteString(fmt.Sprintf("%s %s — %s دعوت\n",
			botutil.RankEmoji(i+1), botutil.Truncate(u.FirstName, 24), botutil.FormatCount(u.TotalReferrals)))
	}
	s.notify.NotifyAdmins(ctx, b.String())
}

func (s *Scheduler) cleanupAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	n, err := s.store.CleanupEventsBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("analytics cleanup", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("analytics events pruned", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	}
}
