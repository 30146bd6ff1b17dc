package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/analytics"
	"github.com/Armin-kho/channel-growth-bot/internal/botutil"
	"github.com/Armin-kho/channel-growth-bot/internal/referral"
)

func (a *App) sendMainMenu(ctx context.Context, userID int64, msgID int) {
	u, err := a.db.GetUser(ctx, userID)
	if err != nil {
		a.log.Warn("load user for menu", zap.Int64("user", userID), zap.Error(err))
		return
	}

	levelName, levelEmoji := referral.Level(u.Points)
	text := fmt.Sprintf("سلام %s! 👋\n\n%s سطح شما: %s\n💰 امتیاز: %s\n\nیکی را انتخاب کنید:",
		botutil.Truncate(u.FirstName, 24), levelEmoji, levelName, botutil.FormatCount(u.Points))

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 آمار من", "mystats"),
			tgbotapi.NewInlineKeyboardButtonData("🏆 برترین‌ها", "leaderboard"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 دعوت دوستان", "referral"),
			tgbotapi.NewInlineKeyboardButtonData("🎁 جوایز", "rewards"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) sendMyStats(ctx context.Context, userID int64, msgID int) {
	u, err := a.db.GetUser(ctx, userID)
	if err != nil {
		return
	}

	levelName, levelEmoji := referral.Level(u.Points)
	done, need := referral.LevelProgress(u.Points)

	var b strings.Builder
	b.WriteString("📊 آمار شما\n\n")
	b.WriteString(fmt.Sprintf("%s سطح: %s\n", levelEmoji, levelName))
	b.WriteString("💰 امتیاز: " + botutil.FormatCount(u.Points) + "\n")
	b.WriteString("👥 دعوت موفق: " + botutil.FormatCount(u.TotalReferrals) + "\n")
	b.WriteString("📅 عضویت: " + botutil.JalaliDate(u.JoinDate) + "\n")
	if done < need {
		b.WriteString("\nتا سطح بعدی:\n")
		b.WriteString(botutil.ProgressBar(done, need) + "\n")
		b.WriteString(botutil.FormatCount(need-done) + " امتیاز مانده")
	} else {
		b.WriteString("\n💠 شما در بالاترین سطح هستید!")
	}

	kb := backKeyboard("menu")
	a.editOrSendMenu(userID, msgID, b.String(), kb)
}

func (a *App) sendLeaderboard(ctx context.Context, userID int64, msgID int) {
	top, err := a.db.TopReferrers(ctx, 10)
	if err != nil {
		return
	}

	var b strings.Builder
	b.WriteString("🏆 برترین دعوت‌کنندگان\n\n")
	if len(top) == 0 {
		b.WriteString("هنوز کسی دعوتی نداشته. شما اولین باشید!")
	}
	for i, u := range top {
		b.WriteString(fmt.Sprintf("%s %s — %s دعوت\n",
			botutil.RankEmoji(i+1), botutil.Truncate(u.FirstName, 24), botutil.FormatCount(u.TotalReferrals)))
	}

	if me, err := a.db.GetUser(ctx, userID); err == nil && me.TotalReferrals > 0 {
		b.WriteString("\n👤 دعوت‌های شما: " + botutil.FormatCount(me.TotalReferrals))
	}

	a.editOrSendMenu(userID, msgID, b.String(), backKeyboard("menu"))
}

func (a *App) sendReferralMenu(ctx context.Context, userID int64, msgID int) {
	a.tracker.Track(ctx, analytics.EventReferralShare, userID, "")

	link := referral.Link(userID, a.bot.Self.UserName)
	text := fmt.Sprintf("🔗 دعوت دوستان\n\nلینک اختصاصی شما:\n%s\n\nهر دوستی که با این لینک عضو شود %d امتیاز می‌گیرید!",
		link, a.cfg.ReferralReward)
	if n, err := a.db.ReferralCount(ctx, userID); err == nil && n > 0 {
		text += "\n\n👥 تا حالا " + botutil.FormatCount(n) + " نفر با لینک شما عضو شده‌اند."
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonSwitch("📤 اشتراک‌گذاری", link),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "menu"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) sendRewardsMenu(ctx context.Context, userID int64, msgID int) {
	u, err := a.db.GetUser(ctx, userID)
	if err != nil {
		return
	}
	contents, err := a.db.ListActiveContent(ctx)
	if err != nil {
		return
	}
	claimed, _ := a.db.ClaimedContentIDs(ctx, userID)

	a.tracker.Track(ctx, analytics.EventContentView, userID, "")

	// Content rows double as the reward tier table; eligibility is the
	// AND of both thresholds.
	table := make([]referral.Tier, len(contents))
	for i, c := range contents {
		table[i] = referral.Tier{ID: c.ID, Name: c.Title, MinReferrals: c.RequiredReferrals, MinPoints: c.RequiredPoints}
	}
	eligibleIDs := map[int64]bool{}
	for _, t := range referral.EligibleTiers(u.TotalReferrals, u.Points, table) {
		eligibleIDs[t.ID] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var b strings.Builder
	b.WriteString("🎁 جوایز و محتوای ویژه\n\n")
	if len(contents) == 0 {
		b.WriteString("فعلاً جایزه‌ای تعریف نشده.")
	}
	for _, c := range contents {
		mark := "🔒"
		if claimed[c.ID] {
			mark = "✅"
		} else if eligibleIDs[c.ID] {
			mark = "🎁"
		}
		b.WriteString(fmt.Sprintf("%s %s (%s دعوت / %s امتیاز)\n",
			mark, c.Title, botutil.FormatCount(c.RequiredReferrals), botutil.FormatCount(c.RequiredPoints)))
		if eligibleIDs[c.ID] && !claimed[c.ID] {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🎁 دریافت "+botutil.Truncate(c.Title, 20), fmt.Sprintf("claim|%d", c.ID)),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "menu"),
	))

	kb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	a.editOrSendMenu(userID, msgID, b.String(), kb)
}

func (a *App) onClaim(ctx context.Context, userID, contentID int64, msgID int) {
	status, err := a.engine.Claim(ctx, userID, contentID)
	if err != nil {
		a.log.Error("claim content", zap.Int64("user", userID), zap.Int64("content", contentID), zap.Error(err))
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "❌ خطا در دریافت جایزه. دوباره تلاش کنید."))
		return
	}

	switch status {
	case referral.Claimed:
		a.tracker.Track(ctx, analytics.EventContentClaim, userID, fmt.Sprintf(`{"content_id":%d}`, contentID))
		a.deliverContent(ctx, userID, contentID)
	case referral.AlreadyClaimed:
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "✅ این جایزه را قبلاً دریافت کرده‌اید."))
	case referral.NotEligible:
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "🔒 هنوز شرایط این جایزه را ندارید. دوستان بیشتری دعوت کنید!"))
	}
	a.sendRewardsMenu(ctx, userID, msgID)
}

func (a *App) deliverContent(ctx context.Context, userID, contentID int64) {
	c, err := a.db.GetContent(ctx, contentID)
	if err != nil {
		a.log.Error("load content", zap.Int64("content", contentID), zap.Error(err))
		return
	}

	caption := "🎁 " + c.Title
	if c.Description != "" {
		caption += "\n\n" + c.Description
	}

	switch c.FileType {
	case "photo":
		msg := tgbotapi.NewPhoto(userID, tgbotapi.FileID(c.FileID))
		msg.Caption = caption
		_, _ = a.bot.Send(msg)
	case "video":
		msg := tgbotapi.NewVideo(userID, tgbotapi.FileID(c.FileID))
		msg.Caption = caption
		_, _ = a.bot.Send(msg)
	case "document":
		msg := tgbotapi.NewDocument(userID, tgbotapi.FileID(c.FileID))
		msg.Caption = caption
		_, _ = a.bot.Send(msg)
	default:
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, caption))
	}
}

func backKeyboard(target string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", target),
		),
	)
}
