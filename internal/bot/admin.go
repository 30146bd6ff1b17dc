package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/botutil"
	"github.com/Armin-kho/channel-growth-bot/internal/referral"
	"github.com/Armin-kho/channel-growth-bot/internal/session"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

const runExecTimeout = 55 * time.Minute

var selectorLabels = []struct {
	Sel   store.Selector
	Label string
}{
	{store.SelectorAll, "👥 همه"},
	{store.SelectorActive, "⚡️ فعال (۷ روز)"},
	{store.SelectorNew, "🆕 جدید (۷ روز)"},
	{store.SelectorTop, "🏆 برترین‌ها"},
	{store.SelectorInactive, "😴 غیرفعال (۳۰ روز)"},
}

func (a *App) sendAdminMenu(ctx context.Context, userID int64, msgID int) {
	text := "⚙️ پنل مدیریت ربات رشد کانال\n\nیکی را انتخاب کنید:"
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 آمار", "astats"),
			tgbotapi.NewInlineKeyboardButtonData("📈 گزارش رفتاری", "areport"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📣 ارسال پیام", "abroadcast"),
			tgbotapi.NewInlineKeyboardButtonData("🗂 کمپین‌های اخیر", "runs"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧪 تست A/B", "abtest"),
			tgbotapi.NewInlineKeyboardButtonData("📋 تست‌های اخیر", "ablist"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 مدیریت جوایز", "aclist"),
			tgbotapi.NewInlineKeyboardButtonData("👥 ادمین‌ها", "admins"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 مسدود/آزاد کردن کاربر", "abanuser"),
			tgbotapi.NewInlineKeyboardButtonData("🛟 بکاپ دیتابیس", "abackup"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) sendAdminStats(ctx context.Context, userID int64, msgID int) {
	st, err := a.db.Stats(ctx)
	if err != nil {
		a.log.Error("load stats", zap.Error(err))
		return
	}

	var b strings.Builder
	b.WriteString("📊 آمار ربات\n\n")
	b.WriteString("👥 کل کاربران: " + botutil.FormatCount(st.TotalUsers) + "\n")
	b.WriteString("✅ اعضای کانال: " + botutil.FormatCount(st.ActiveMembers) + "\n")
	b.WriteString("🆕 کاربران امروز: " + botutil.FormatCount(st.TodayUsers) + "\n\n")
	b.WriteString("🔗 کل دعوت‌ها: " + botutil.FormatCount(st.TotalReferrals) + "\n")
	b.WriteString("📅 دعوت‌های هفته: " + botutil.FormatCount(st.WeekReferrals) + "\n\n")
	b.WriteString("⚡️ فعال روزانه: " + botutil.FormatCount(st.DailyActive) + "\n")
	b.WriteString("📆 فعال هفتگی: " + botutil.FormatCount(st.WeeklyActive) + "\n")
	b.WriteString("🗓 فعال ماهانه: " + botutil.FormatCount(st.MonthlyActive) + "\n")

	a.editOrSendMenu(userID, msgID, b.String(), backKeyboard("admin"))
}

func (a *App) sendAnalyticsReport(ctx context.Context, userID int64, msgID int) {
	rep, err := a.tracker.Report(ctx)
	if err != nil {
		a.log.Error("analytics report", zap.Error(err))
		return
	}

	var b strings.Builder
	b.WriteString("📈 گزارش رفتاری — " + botutil.JalaliDateTime(rep.GeneratedAt) + "\n\n")
	b.WriteString(fmt.Sprintf("🚀 نرخ رشد امروز: %s%%\n", botutil.ToPersianDigits(fmt.Sprintf("%.1f", rep.GrowthRate))))
	b.WriteString(fmt.Sprintf("💬 نرخ تعامل: %s%%\n\n", botutil.ToPersianDigits(fmt.Sprintf("%.1f", rep.EngagementRate))))
	if len(rep.PopularActions) > 0 {
		b.WriteString("پرتکرارترین اقدامات هفته:\n")
		for _, ac := range rep.PopularActions {
			b.WriteString("• " + ac.EventType + ": " + botutil.FormatCount(ac.Count) + "\n")
		}
	}

	a.editOrSendMenu(userID, msgID, b.String(), backKeyboard("admin"))
}

func (a *App) sendRecentRuns(ctx context.Context, userID int64, msgID int) {
	runs, err := a.db.RecentRuns(ctx, 10)
	if err != nil {
		return
	}

	var b strings.Builder
	b.WriteString("🗂 کمپین‌های اخیر\n\n")
	if len(runs) == 0 {
		b.WriteString("هنوز کمپینی ارسال نشده.")
	}
	for _, r := range runs {
		icon := "⏳"
		switch r.Status {
		case store.RunCompleted:
			icon = "✅"
		case store.RunCancelled:
			icon = "🛑"
		}
		b.WriteString(fmt.Sprintf("%s %s | %s\n✉️ %s | ارسال %s | خطا %s\n\n",
			icon, botutil.JalaliDateTime(r.CreatedAt), string(r.Selector),
			botutil.Truncate(r.MessageText, 32),
			botutil.FormatCount(r.Sent), botutil.FormatCount(r.Failed)))
	}

	a.editOrSendMenu(userID, msgID, b.String(), backKeyboard("admin"))
}

// --- broadcast wizard ---

func (a *App) startBroadcastWizard(userID int64) {
	s := a.sess.Get(userID)
	s.Broadcast = session.BroadcastDraft{Selector: string(store.SelectorAll)}
	s.Await = session.AwaitBroadcastText
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID,
		"📣 ارسال پیام\n\nمتن پیام را بفرستید.\nمی‌توانید عکس یا ویدیو با کپشن هم ارسال کنید."))
}

func (a *App) sendBroadcastMenu(userID int64, msgID int) {
	s := a.sess.Get(userID)
	d := s.Broadcast

	media := "—"
	if d.MediaType != "" {
		media = d.MediaType
	}
	pers := "⬜️ خاموش"
	if d.Personalized {
		pers = "✅ روشن"
	}
	text := fmt.Sprintf("📣 پیش‌نمایش کمپین\n\n%s\n\nمدیا: %s\nشخصی‌سازی: %s\n\nمخاطبان را انتخاب و سپس ارسال کنید:",
		botutil.Truncate(d.Text, 400), media, pers)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, sl := range selectorLabels {
		mark := "⬜️"
		if d.Selector == string(sl.Sel) {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+" "+sl.Label, "bsel|"+string(sl.Sel)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 شخصی‌سازی روشن/خاموش", "bpers"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 ارسال الآن", "bnow"),
			tgbotapi.NewInlineKeyboardButtonData("⏰ زمان‌بندی", "bsched"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ انصراف", "bcancel"),
		),
	)

	kb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) onBroadcastSelector(ctx context.Context, userID int64, msgID int, sel string) {
	s := a.sess.Get(userID)
	if s.Broadcast.Text == "" && s.Broadcast.MediaFileID == "" {
		a.sendAdminMenu(ctx, userID, msgID)
		return
	}
	s.Broadcast.Selector = sel
	a.sendBroadcastMenu(userID, msgID)
}

func (a *App) onBroadcastPersonalize(ctx context.Context, userID int64, msgID int) {
	s := a.sess.Get(userID)
	if s.Broadcast.Text == "" && s.Broadcast.MediaFileID == "" {
		a.sendAdminMenu(ctx, userID, msgID)
		return
	}
	s.Broadcast.Personalized = !s.Broadcast.Personalized
	a.sendBroadcastMenu(userID, msgID)
}

func (a *App) onBroadcastSendNow(ctx context.Context, userID int64, msgID int) {
	run, ok := a.createDraftRun(ctx, userID, 0)
	if !ok {
		a.sendAdminMenu(ctx, userID, msgID)
		return
	}

	claimed, err := a.db.ClaimRun(ctx, run.ID)
	if err != nil || !claimed {
		a.log.Error("claim immediate run", zap.String("run", run.ID), zap.Error(err))
		return
	}
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "⏳ ارسال شروع شد..."))

	go func() {
		execCtx, cancel := context.WithTimeout(context.Background(), runExecTimeout)
		defer cancel()
		res, err := a.exec.Execute(execCtx, run.ID)
		if err != nil {
			a.log.Error("execute run", zap.String("run", run.ID), zap.Error(err))
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "❌ اجرای کمپین با خطا متوقف شد."))
			return
		}
		text := fmt.Sprintf("✅ کمپین تمام شد\n\n🎯 مخاطب: %s\n✉️ ارسال شده: %s\n⚠️ ناموفق: %s",
			botutil.FormatCount(res.Targeted), botutil.FormatCount(res.Sent), botutil.FormatCount(res.Failed))
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, text))
	}()
}

func (a *App) onBroadcastScheduleAsk(userID int64) {
	s := a.sess.Get(userID)
	if s.Broadcast.Text == "" && s.Broadcast.MediaFileID == "" {
		return
	}
	s.Await = session.AwaitBroadcastSchedule
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID,
		"⏰ زمان ارسال را به صورت HH:MM بفرستید (به وقت تهران).\nاگر زمان گذشته باشد، فردا ارسال می‌شود."))
}

// createDraftRun persists the in-session draft as a campaign run. scheduledAt
// of zero means immediate.
func (a *App) createDraftRun(ctx context.Context, userID int64, scheduledAt int64) (store.CampaignRun, bool) {
	s := a.sess.Get(userID)
	d := s.Broadcast
	if d.Text == "" && d.MediaFileID == "" {
		return store.CampaignRun{}, false
	}

	run := store.CampaignRun{
		ID:           uuid.NewString(),
		Selector:     store.Selector(d.Selector),
		MessageText:  d.Text,
		MediaType:    d.MediaType,
		MediaFileID:  d.MediaFileID,
		Personalized: d.Personalized,
		CreatedBy:    userID,
	}
	if scheduledAt > 0 {
		run.ScheduledAt.Valid = true
		run.ScheduledAt.Int64 = scheduledAt
	}

	if err := a.db.CreateRun(ctx, run); err != nil {
		a.log.Error("create run", zap.Error(err))
		return store.CampaignRun{}, false
	}
	a.sess.Clear(userID)
	return run, true
}

// --- wizard message input ---

func (a *App) handleAwait(ctx context.Context, msg tgbotapi.Message, sess *session.Session) {
	userID := msg.From.ID

	isAdmin, isSuper, _ := a.db.IsAdmin(ctx, userID)
	if !isAdmin {
		a.sess.Clear(userID)
		a.sendMainMenu(ctx, userID, 0)
		return
	}

	switch sess.Await {
	case session.AwaitBroadcastText:
		text, mediaType, fileID := extractPayload(msg)
		if text == "" && fileID == "" {
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "پیام خالی است. متن یا عکس/ویدیو بفرستید."))
			return
		}
		sess.Broadcast.Text = text
		sess.Broadcast.MediaType = mediaType
		sess.Broadcast.MediaFileID = fileID
		sess.Await = session.AwaitNone
		a.sendBroadcastMenu(userID, 0)

	case session.AwaitBroadcastSchedule:
		mins, ok := botutil.ParseHHMM(strings.TrimSpace(msg.Text))
		if !ok {
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "فرمت درست نیست. مثال: 18:30"))
			return
		}
		now := botutil.NowTehran()
		at := time.Date(now.Year(), now.Month(), now.Day(), mins/60, mins%60, 0, 0, botutil.TehranLoc())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		run, ok := a.createDraftRun(ctx, userID, at.Unix())
		if !ok {
			return
		}
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID,
			"⏰ کمپین زمان‌بندی شد برای "+botutil.JalaliDateTime(at)+"\nشناسه: "+run.ID[:8]))

	case session.AwaitABVariantA:
		if strings.TrimSpace(msg.Text) == "" {
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "متن نسخه A خالی است. دوباره بفرستید."))
			return
		}
		sess.AB.VariantA = msg.Text
		sess.Await = session.AwaitABVariantB
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "حالا متن نسخه B را بفرستید."))

	case session.AwaitABVariantB:
		if strings.TrimSpace(msg.Text) == "" {
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "متن نسخه B خالی است. دوباره بفرستید."))
			return
		}
		sess.AB.VariantB = msg.Text
		sess.Await = session.AwaitNone
		a.sendABConfirm(userID)

	case session.AwaitContentTitle:
		title := strings.TrimSpace(msg.Text)
		if title == "" {
			_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "عنوان خالی است. یک عنوان بفرستید."))
			return
		}
		sess.Content.Title = title
		sess.Await = session.AwaitContentPayload
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID,
			"حالا محتوای جایزه را بفرستید (متن، عکس، ویدیو یا فایل)."))

	case session.AwaitContentPayload:
		a.onContentPayload(msg, sess)

	case session.AwaitContentThresholds:
		a.onContentThresholds(ctx, msg, sess)

	case session.AwaitAddAdmin:
		a.onAddAdminMessage(ctx, msg, isSuper)

	case session.AwaitBanUser:
		a.onBanUserMessage(ctx, msg)

	default:
		a.sess.Clear(userID)
		a.sendMainMenu(ctx, userID, 0)
	}
}

func extractPayload(msg tgbotapi.Message) (text, mediaType, fileID string) {
	if len(msg.Photo) > 0 {
		ph := msg.Photo[len(msg.Photo)-1]
		return msg.Caption, "photo", ph.FileID
	}
	if msg.Video != nil {
		return msg.Caption, "video", msg.Video.FileID
	}
	return msg.Text, "", ""
}

// --- content wizard ---

func (a *App) sendContentList(ctx context.Context, userID int64, msgID int) {
	contents, err := a.db.ListContent(ctx)
	if err != nil {
		a.log.Error("list content", zap.Error(err))
		return
	}

	var b strings.Builder
	var rows [][]tgbotapi.InlineKeyboardButton
	b.WriteString("🎁 مدیریت جوایز\n\n")
	if len(contents) == 0 {
		b.WriteString("هنوز جایزه‌ای تعریف نشده.")
	}
	for _, c := range contents {
		state := "✅ فعال"
		action := "⏸ غیرفعال کن"
		if !c.IsActive {
			state = "⏸ غیرفعال"
			action = "✅ فعال کن"
		}
		b.WriteString(fmt.Sprintf("#%d %s | %s دعوت / %s امتیاز | %s\n",
			c.ID, c.Title, botutil.FormatCount(c.RequiredReferrals), botutil.FormatCount(c.RequiredPoints), state))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s #%d", action, c.ID), fmt.Sprintf("actoggle|%d", c.ID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ افزودن جایزه", "acontent"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "admin"),
		),
	)

	kb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	a.editOrSendMenu(userID, msgID, b.String(), kb)
}

func (a *App) onContentToggle(ctx context.Context, userID int64, msgID int, contentID int64) {
	c, err := a.db.GetContent(ctx, contentID)
	if err != nil {
		a.log.Warn("toggle content", zap.Int64("content", contentID), zap.Error(err))
		return
	}
	if err := a.db.SetContentActive(ctx, contentID, !c.IsActive); err != nil {
		a.log.Error("set content active", zap.Int64("content", contentID), zap.Error(err))
		return
	}
	a.sendContentList(ctx, userID, msgID)
}

func (a *App) startContentWizard(userID int64) {
	s := a.sess.Get(userID)
	s.Content = session.ContentDraft{}
	s.Await = session.AwaitContentTitle
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "🎁 افزودن جایزه\n\nعنوان جایزه را بفرستید."))
}

func (a *App) onContentPayload(msg tgbotapi.Message, sess *session.Session) {
	userID := msg.From.ID

	var fileType, fileID string
	switch {
	case len(msg.Photo) > 0:
		fileType = "photo"
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		fileType = "video"
		fileID = msg.Video.FileID
	case msg.Document != nil:
		fileType = "document"
		fileID = msg.Document.FileID
	case strings.TrimSpace(msg.Text) != "":
		// Text-only content; delivered as a plain message.
	default:
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "لطفاً متن، عکس، ویدیو یا فایل بفرستید."))
		return
	}

	sess.Content.Payload = fileType + "|" + fileID + "|" + firstNonEmpty(msg.Caption, msg.Text)
	sess.Await = session.AwaitContentThresholds
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID,
		"شرایط دریافت را بفرستید: «تعداد دعوت» و «امتیاز» با فاصله.\nمثال: 5 50"))
}

func (a *App) onContentThresholds(ctx context.Context, msg tgbotapi.Message, sess *session.Session) {
	userID := msg.From.ID

	fields := strings.Fields(strings.TrimSpace(msg.Text))
	if len(fields) != 2 {
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "فرمت درست نیست. مثال: 5 50"))
		return
	}
	refs, err1 := strconv.Atoi(fields[0])
	pts, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || refs < 0 || pts < 0 {
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "اعداد نامعتبر هستند. مثال: 5 50"))
		return
	}

	parts := strings.SplitN(sess.Content.Payload, "|", 3)
	c := store.Content{
		Title:             sess.Content.Title,
		FileType:          parts[0],
		FileID:            parts[1],
		Description:       parts[2],
		RequiredReferrals: refs,
		RequiredPoints:    pts,
	}
	a.sess.Clear(userID)

	id, err := a.db.AddContent(ctx, c)
	if err != nil {
		a.log.Error("add content", zap.Error(err))
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "❌ ثبت جایزه ناموفق بود."))
		return
	}
	reply := fmt.Sprintf("✅ جایزه «%s» ثبت شد (#%d)\nشرط: %d دعوت و %d امتیاز", c.Title, id, refs, pts)

	// Warn when the new thresholds break the ascending reward ladder; the
	// row is saved either way.
	if contents, err := a.db.ListActiveContent(ctx); err == nil {
		table := make([]referral.Tier, len(contents))
		for i, ct := range contents {
			table[i] = referral.Tier{ID: ct.ID, Name: ct.Title, MinReferrals: ct.RequiredReferrals, MinPoints: ct.RequiredPoints}
		}
		if err := referral.ValidateTable(table); err != nil {
			reply += "\n\n⚠️ ترتیب شرایط جوایز دیگر صعودی نیست؛ شرط‌ها را بازبینی کنید."
			a.log.Warn("reward ladder not ascending", zap.Error(err))
		}
	}
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, reply))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// --- A/B test wizard ---

func (a *App) startABWizard(userID int64) {
	s := a.sess.Get(userID)
	s.AB = session.ABDraft{}
	s.Await = session.AwaitABVariantA
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "🧪 تست A/B\n\nمتن نسخه A را بفرستید."))
}

func (a *App) sendABConfirm(userID int64) {
	s := a.sess.Get(userID)
	text := fmt.Sprintf("🧪 پیش‌نمایش تست A/B\n\nنسخه A:\n%s\n\nنسخه B:\n%s\n\nنسبت تقسیم: %.0f%%",
		botutil.Truncate(s.AB.VariantA, 200), botutil.Truncate(s.AB.VariantB, 200), a.cfg.ABSplitRatio*100)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 شروع تست", "abrun"),
			tgbotapi.NewInlineKeyboardButtonData("❌ انصراف", "bcancel"),
		),
	)
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = kb
	_, _ = a.bot.Send(msg)
}

func (a *App) onABRun(ctx context.Context, userID int64, msgID int) {
	s := a.sess.Get(userID)
	if s.AB.VariantA == "" || s.AB.VariantB == "" {
		a.sendAdminMenu(ctx, userID, msgID)
		return
	}

	test := store.ABTest{
		ID:       uuid.NewString(),
		VariantA: s.AB.VariantA,
		VariantB: s.AB.VariantB,
		Ratio:    a.cfg.ABSplitRatio,
	}
	a.sess.Clear(userID)

	if err := a.db.CreateABTest(ctx, test); err != nil {
		a.log.Error("create ab test", zap.Error(err))
		return
	}
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "⏳ تست شروع شد. نتیجه را در «تست‌های اخیر» ببینید."))

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), runExecTimeout)
		defer cancel()
		if err := a.abs.Run(runCtx, test.ID); err != nil {
			a.log.Error("run ab test", zap.String("test", test.ID), zap.Error(err))
		}
	}()
}

func (a *App) sendABList(ctx context.Context, userID int64, msgID int) {
	tests, err := a.db.ListABTests(ctx, 5)
	if err != nil {
		return
	}

	var b strings.Builder
	var rows [][]tgbotapi.InlineKeyboardButton
	b.WriteString("📋 تست‌های اخیر\n\n")
	if len(tests) == 0 {
		b.WriteString("هنوز تستی اجرا نشده.")
	}
	for _, t := range tests {
		winner := "—"
		if t.Winner.Valid {
			winner = t.Winner.String
		}
		b.WriteString(fmt.Sprintf("• %s | %s | وضعیت: %s | برنده: %s\n",
			t.ID[:8], botutil.JalaliDateTime(t.CreatedAt), t.Status, winner))
		if t.Status == "sent" || t.Status == "analyzed" {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📈 تحلیل "+t.ID[:8], "aban|"+t.ID),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "admin"),
	))

	kb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	a.editOrSendMenu(userID, msgID, b.String(), kb)
}

func (a *App) onABAnalyze(ctx context.Context, userID int64, msgID int, testID string) {
	if testID == "" {
		return
	}
	v, err := a.abs.Analyze(ctx, testID)
	if err != nil {
		a.log.Error("analyze ab test", zap.String("test", testID), zap.Error(err))
		return
	}

	var text string
	if v.Significant {
		text = fmt.Sprintf("📈 نتیجه تست\n\n🏆 برنده: نسخه %s\nاختلاف نرخ کلیک: %.1f واحد درصد\nاطمینان: %.0f%%",
			v.Winner, v.DeltaPP, v.Confidence)
	} else {
		text = "📈 نتیجه تست\n\n⚖️ تفاوت معناداری دیده نشد.\n(" + v.Reason + ")"
	}
	a.editOrSendMenu(userID, msgID, text, backKeyboard("ablist"))
}

// --- admins ---

func (a *App) sendAdminsMenu(ctx context.Context, userID int64, msgID int) {
	admins, _ := a.db.ListAdmins(ctx)

	var b strings.Builder
	b.WriteString("👥 مدیریت ادمین‌ها\n\n")
	for _, ad := range admins {
		tag := ""
		if ad.IsSuper {
			tag = " (super)"
		}
		b.WriteString(fmt.Sprintf("• %d%s\n", ad.UserID, tag))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ افزودن ادمین", "adminadd"),
		),
	}
	for _, ad := range admins {
		if ad.IsSuper {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("❌ حذف %d", ad.UserID), fmt.Sprintf("adminrm|%d", ad.UserID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ بازگشت", "admin"),
	))

	kb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	a.editOrSendMenu(userID, msgID, b.String(), kb)
}

func (a *App) onAddAdminMessage(ctx context.Context, msg tgbotapi.Message, isSuper bool) {
	userID := msg.From.ID
	if !isSuper {
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "⛔️ فقط ادمین اصلی می‌تواند ادمین جدید اضافه کند."))
		a.sess.Clear(userID)
		return
	}

	var newID int64
	if msg.ForwardFrom != nil {
		newID = msg.ForwardFrom.ID
	} else if id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64); err == nil {
		newID = id
	}
	if newID == 0 {
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "لطفاً پیام را Forward کنید یا User ID عددی را ارسال کنید."))
		return
	}

	_ = a.db.AddAdmin(ctx, newID, false)
	a.sess.Clear(userID)
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, fmt.Sprintf("✅ ادمین جدید اضافه شد: %d", newID)))
	a.sendAdminsMenu(ctx, userID, 0)
}

func (a *App) startBanUser(userID int64) {
	a.sess.Get(userID).Await = session.AwaitBanUser
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID,
		"🚫 پیام کاربر را Forward کنید یا User ID عددی او را بفرستید.\nاگر مسدود باشد آزاد می‌شود و برعکس."))
}

// onBanUserMessage toggles the ban flag of the identified user. Banned users
// stay in the ledger; every campaign selector skips them.
func (a *App) onBanUserMessage(ctx context.Context, msg tgbotapi.Message) {
	adminID := msg.From.ID

	var targetID int64
	if msg.ForwardFrom != nil {
		targetID = msg.ForwardFrom.ID
	} else if id, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64); err == nil {
		targetID = id
	}
	if targetID == 0 {
		_, _ = a.bot.Send(tgbotapi.NewMessage(adminID, "لطفاً پیام را Forward کنید یا User ID عددی را ارسال کنید."))
		return
	}
	a.sess.Clear(adminID)

	u, err := a.db.GetUser(ctx, targetID)
	if err != nil {
		_, _ = a.bot.Send(tgbotapi.NewMessage(adminID, "❌ کاربری با این شناسه پیدا نشد."))
		return
	}
	if err := a.db.SetBanned(ctx, targetID, !u.IsBanned); err != nil {
		a.log.Error("set banned", zap.Int64("user", targetID), zap.Error(err))
		return
	}
	if u.IsBanned {
		_, _ = a.bot.Send(tgbotapi.NewMessage(adminID, fmt.Sprintf("✅ کاربر %d آزاد شد.", targetID)))
	} else {
		_, _ = a.bot.Send(tgbotapi.NewMessage(adminID, fmt.Sprintf("🚫 کاربر %d مسدود شد.", targetID)))
	}
}

// --- backup ---

// sendDBBackup snapshots the live database with VACUUM INTO and ships the
// file to the requesting admin.
func (a *App) sendDBBackup(ctx context.Context, userID int64) {
	tmp := filepath.Join(a.dataDir, fmt.Sprintf("backup_%d_bot.db", time.Now().Unix()))
	bctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := a.db.BackupTo(bctx, tmp); err != nil {
		a.log.Error("db backup", zap.Error(err))
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "❌ بکاپ ناموفق: "+err.Error()))
		return
	}

	doc := tgbotapi.NewDocument(userID, tgbotapi.FilePath(tmp))
	doc.Caption = "📦 Backup DB"
	_, _ = a.bot.Send(doc)
	_ = os.Remove(tmp)
}
