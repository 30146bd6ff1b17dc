package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Armin-kho/channel-growth-bot/internal/analytics"
	"github.com/Armin-kho/channel-growth-bot/internal/campaign"
	"github.com/Armin-kho/channel-growth-bot/internal/config"
	"github.com/Armin-kho/channel-growth-bot/internal/referral"
	"github.com/Armin-kho/channel-growth-bot/internal/session"
	"github.com/Armin-kho/channel-growth-bot/internal/store"
)

const sessionTTL = 30 * time.Minute

type App struct {
	cfg config.Config
	db  *store.Store

	bot *tgbotapi.BotAPI
	log *zap.Logger

	engine  *referral.Engine
	tracker *analytics.Tracker
	exec    *campaign.Executor
	abs     *campaign.ABRunner

	sess *session.Store

	dataDir string
	dbPath  string
}

func New(cfg config.Config, db *store.Store, b *tgbotapi.BotAPI, dataDir, dbPath string, log *zap.Logger) *App {
	tracker := analytics.NewTracker(db, log)
	app := &App{
		cfg:     cfg,
		db:      db,
		bot:     b,
		log:     log,
		engine:  referral.NewEngine(db, cfg.ReferralReward, log),
		tracker: tracker,
		sess:    session.NewStore(sessionTTL),
		dataDir: dataDir,
		dbPath:  dbPath,
	}
	sender := &telegramSender{bot: b}
	app.exec = campaign.NewExecutor(db, sender, tracker, cfg.SendRatePerMinute, log)
	app.abs = campaign.NewABRunner(db, sender, cfg.SendRatePerMinute, cfg.ABPoolSize, cfg.ABMinSample, log)
	return app
}

// Executor exposes the campaign runner for the background scheduler.
func (a *App) Executor() *campaign.Executor {
	return a.exec
}

// Run blocks on the long-poll update loop until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("bot authorized", zap.String("username", a.bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := a.bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		a.bot.StopReceivingUpdates()
	}()
	go a.sweepSessions(ctx)

	for upd := range updates {
		a.handleUpdate(ctx, upd)
	}
	return ctx.Err()
}

func (a *App) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		a.handleMessage(ctx, *upd.Message)
		return
	}
	if upd.CallbackQuery != nil {
		a.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
}

// sweepSessions prunes abandoned wizard state so the map does not grow with
// every user who ever opened a wizard.
func (a *App) sweepSessions(ctx context.Context) {
	t := time.NewTicker(sessionTTL)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.sess.Sweep(); n > 0 {
				a.log.Debug("sessions expired", zap.Int("count", n))
			}
		}
	}
}

// NotifyAdmins pushes a plain text message to every admin.
func (a *App) NotifyAdmins(ctx context.Context, text string) {
	admins, err := a.db.ListAdmins(ctx)
	if err != nil {
		a.log.Warn("list admins", zap.Error(err))
		return
	}
	for _, ad := range admins {
		_, _ = a.bot.Send(tgbotapi.NewMessage(ad.UserID, text))
	}
}

func (a *App) handleMessage(ctx context.Context, msg tgbotapi.Message) {
	// Growth flows run in private chat only; group chatter is ignored.
	if msg.Chat == nil || msg.Chat.Type != "private" || msg.From == nil {
		return
	}
	userID := msg.From.ID

	var referrerID *int64
	if msg.IsCommand() && msg.Command() == "start" {
		if id, ok := referral.DecodeStartCode(msg.CommandArguments()); ok {
			referrerID = &id
		}
	}

	if err := a.db.UpsertUser(ctx, userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName, referrerID); err != nil {
		a.log.Error("upsert user", zap.Int64("user", userID), zap.Error(err))
		return
	}
	_ = a.db.TouchActivity(ctx, userID)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			a.onStart(ctx, msg, referrerID)
		case "admin":
			a.onAdminCommand(ctx, msg)
		case "help":
			a.sendHelp(userID)
		default:
			a.sendMainMenu(ctx, userID, 0)
		}
		return
	}

	// Pending wizard input takes priority over menus.
	sess := a.sess.Get(userID)
	if sess.Await != session.AwaitNone {
		a.handleAwait(ctx, msg, sess)
		return
	}

	a.sendMainMenu(ctx, userID, msg.MessageID)
}

func (a *App) onStart(ctx context.Context, msg tgbotapi.Message, referrerID *int64) {
	userID := msg.From.ID
	a.tracker.Track(ctx, analytics.EventStart, userID, "")

	if referrerID != nil {
		created, err := a.engine.Register(ctx, *referrerID, userID)
		if err != nil {
			a.log.Error("register referral", zap.Int64("user", userID), zap.Error(err))
		}
		if created {
			// Referrer notification is best effort; the award already stuck.
			text := fmt.Sprintf("🎉 %s با لینک شما عضو شد!\n💰 %d امتیاز گرفتید",
				displayName(*msg.From), a.cfg.ReferralReward)
			_, _ = a.bot.Send(tgbotapi.NewMessage(*referrerID, text))
		}
	}

	if !a.checkMembership(userID) {
		a.sendJoinGate(userID, 0)
		return
	}
	_ = a.db.SetMembership(ctx, userID, true)
	a.sendMainMenu(ctx, userID, 0)
}

func (a *App) onAdminCommand(ctx context.Context, msg tgbotapi.Message) {
	userID := msg.From.ID

	// First private contact becomes the super admin when none is configured.
	count, err := a.db.AdminCount(ctx)
	if err == nil && count == 0 {
		_ = a.db.AddAdmin(ctx, userID, true)
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "✅ شما به عنوان ادمین اصلی ثبت شدید."))
	}

	isAdmin, _, _ := a.db.IsAdmin(ctx, userID)
	if !isAdmin {
		_, _ = a.bot.Send(tgbotapi.NewMessage(userID, "⛔️ دسترسی ندارید."))
		return
	}
	a.sendAdminMenu(ctx, userID, 0)
}

// checkMembership asks Telegram whether the user belongs to the channel.
// API failures count as not-a-member so the gate stays closed.
func (a *App) checkMembership(userID int64) bool {
	member, err := a.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: a.cfg.ChannelID,
			UserID:             userID,
		},
	})
	if err != nil {
		a.log.Debug("get chat member", zap.Int64("user", userID), zap.Error(err))
		return false
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

func (a *App) sendJoinGate(userID int64, msgID int) {
	channel := strings.TrimPrefix(a.cfg.ChannelID, "@")
	text := "👋 خوش آمدید!\n\nبرای استفاده از ربات ابتدا عضو کانال شوید:"
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 عضویت در کانال", "https://t.me/"+channel),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ عضو شدم", "chkmember"),
		),
	)
	a.editOrSendMenu(userID, msgID, text, kb)
}

func (a *App) sendHelp(userID int64) {
	text := "❓ راهنما\n\n" +
		"• /start شروع و منوی اصلی\n" +
		"• از «دعوت دوستان» لینک اختصاصی بگیرید؛ هر عضو جدید امتیاز می‌آورد.\n" +
		"• با امتیاز و تعداد دعوت، سطح شما بالا می‌رود و جوایز باز می‌شوند.\n" +
		"• «جوایز» محتوای ویژه هر سطح را نشان می‌دهد."
	_, _ = a.bot.Send(tgbotapi.NewMessage(userID, text))
}

func displayName(u tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = fmt.Sprintf("%d", u.ID)
	}
	return name
}

func (a *App) editOrSendMenu(userID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msgID != 0 {
		edit := tgbotapi.NewEditMessageText(userID, msgID, text)
		edit.ReplyMarkup = &kb
		edit.DisableWebPagePreview = true
		if _, err := a.bot.Request(edit); err == nil {
			return
		}
	}
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = kb
	msg.DisableWebPagePreview = true
	_, _ = a.bot.Send(msg)
}
