package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/analytics"
	"github.com/Armin-kho/channel-growth-bot/internal/session"
)

func (a *App) handleCallback(ctx context.Context, q tgbotapi.CallbackQuery) {
	// Always answer the callback to remove the client spinner.
	_, _ = a.bot.Request(tgbotapi.NewCallback(q.ID, ""))
	if q.Message == nil {
		return
	}

	userID := q.From.ID
	msgID := q.Message.MessageID
	_ = a.db.TouchActivity(ctx, userID)

	cmd := parseCommand(q.Data)
	a.tracker.Track(ctx, analytics.EventButtonClick, userID, fmt.Sprintf(`{"cmd":%q}`, cmd.Name))

	switch cmd.Name {
	case "menu":
		a.tracker.Track(ctx, analytics.EventMenuNavigation, userID, "")
		a.sendMainMenu(ctx, userID, msgID)
	case "mystats":
		a.sendMyStats(ctx, userID, msgID)
	case "leaderboard":
		a.sendLeaderboard(ctx, userID, msgID)
	case "referral":
		a.sendReferralMenu(ctx, userID, msgID)
	case "rewards":
		a.sendRewardsMenu(ctx, userID, msgID)
	case "claim":
		a.onClaim(ctx, userID, cmd.Int64Arg(0), msgID)
	case "chkmember":
		a.onCheckMembership(ctx, userID, msgID)
	case "abopen":
		a.onABOpen(ctx, userID, msgID, cmd.Arg(0))
	case "abclick":
		a.onABClick(ctx, userID, msgID, cmd.Arg(0))
	case "noop":
		return
	default:
		a.handleAdminCallback(ctx, q, cmd)
	}
}

func (a *App) onCheckMembership(ctx context.Context, userID int64, msgID int) {
	if !a.checkMembership(userID) {
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "❌ هنوز عضو کانال نشده‌اید. ابتدا عضو شوید و دوباره امتحان کنید."))
		return
	}
	_ = a.db.SetMembership(ctx, userID, true)
	a.tracker.Track(ctx, analytics.EventMembershipOK, userID, "")
	a.sendMainMenu(ctx, userID, msgID)
}

// onABOpen records the first stage of the variant funnel and swaps the
// button for the click stage.
func (a *App) onABOpen(ctx context.Context, userID int64, msgID int, testID string) {
	if testID == "" {
		return
	}
	if err := a.db.MarkOpened(ctx, testID, userID); err != nil {
		a.log.Warn("mark opened", zap.String("test", testID), zap.Int64("user", userID), zap.Error(err))
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 ادامه مطلب", "abclick|"+testID),
		),
	)
	_, _ = a.bot.Request(tgbotapi.NewEditMessageReplyMarkup(userID, msgID, kb))
}

func (a *App) onABClick(ctx context.Context, userID int64, msgID int, testID string) {
	if testID == "" {
		return
	}
	if err := a.db.MarkClicked(ctx, testID, userID); err != nil {
		a.log.Warn("mark clicked", zap.String("test", testID), zap.Int64("user", userID), zap.Error(err))
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅", "noop"),
		),
	)
	_, _ = a.bot.Request(tgbotapi.NewEditMessageReplyMarkup(userID, msgID, kb))
}

func (a *App) handleAdminCallback(ctx context.Context, q tgbotapi.CallbackQuery, cmd Command) {
	userID := q.From.ID
	msgID := q.Message.MessageID

	isAdmin, isSuper, _ := a.db.IsAdmin(ctx, userID)
	if !isAdmin {
		a.log.Debug("callback from non-admin", zap.Int64("user", userID), zap.String("cmd", cmd.Name))
		return
	}

	switch cmd.Name {
	case "admin":
		a.sendAdminMenu(ctx, userID, msgID)
	case "astats":
		a.sendAdminStats(ctx, userID, msgID)
	case "areport":
		a.sendAnalyticsReport(ctx, userID, msgID)
	case "runs":
		a.sendRecentRuns(ctx, userID, msgID)

	case "abroadcast":
		a.startBroadcastWizard(userID)
	case "bsel":
		a.onBroadcastSelector(ctx, userID, msgID, cmd.Arg(0))
	case "bpers":
		a.onBroadcastPersonalize(ctx, userID, msgID)
	case "bnow":
		a.onBroadcastSendNow(ctx, userID, msgID)
	case "bsched":
		a.onBroadcastScheduleAsk(userID)
	case "bcancel":
		a.sess.Clear(userID)
		a.sendAdminMenu(ctx, userID, msgID)

	case "aclist":
		a.sendContentList(ctx, userID, msgID)
	case "actoggle":
		a.onContentToggle(ctx, userID, msgID, cmd.Int64Arg(0))
	case "acontent":
		a.startContentWizard(userID)
	case "abanuser":
		a.startBanUser(userID)
	case "abtest":
		a.startABWizard(userID)
	case "abrun":
		a.onABRun(ctx, userID, msgID)
	case "ablist":
		a.sendABList(ctx, userID, msgID)
	case "aban":
		a.onABAnalyze(ctx, userID, msgID, cmd.Arg(0))

	case "admins":
		if !isSuper {
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "⛔️ فقط ادمین اصلی می‌تواند ادمین‌ها را مدیریت کند."))
			return
		}
		a.sendAdminsMenu(ctx, userID, msgID)
	case "adminadd":
		if !isSuper {
			return
		}
		a.sess.Get(userID).Await = session.AwaitAddAdmin
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "پیام یک کاربر را Forward کنید یا User ID عددی او را بفرستید."))
	case "adminrm":
		if !isSuper {
			return
		}
		_ = a.db.RemoveAdmin(ctx, cmd.Int64Arg(0))
		a.sendAdminsMenu(ctx, userID, msgID)

	case "abackup":
		a.sendDBBackup(ctx, userID)

	default:
		a.log.Warn("unknown callback", zap.String("data", q.Data), zap.Int64("user", userID))
	}
}
