package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Armin-kho/channel-growth-bot/internal/campaign"
)

// telegramSender delivers campaign payloads over the bot API.
type telegramSender struct {
	bot *tgbotapi.BotAPI
}

func (s *telegramSender) Send(ctx context.Context, userID int64, p campaign.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var kb *tgbotapi.InlineKeyboardMarkup
	if p.ButtonText != "" && p.ButtonData != "" {
		m := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(p.ButtonText, p.ButtonData),
			),
		)
		kb = &m
	}

	if p.MediaType != "" && p.MediaFileID != "" {
		switch p.MediaType {
		case "video":
			msg := tgbotapi.NewVideo(userID, tgbotapi.FileID(p.MediaFileID))
			msg.Caption = p.Text
			if kb != nil {
				msg.ReplyMarkup = *kb
			}
			_, err := s.bot.Send(msg)
			return err
		default: // photo
			msg := tgbotapi.NewPhoto(userID, tgbotapi.FileID(p.MediaFileID))
			msg.Caption = p.Text
			if kb != nil {
				msg.ReplyMarkup = *kb
			}
			_, err := s.bot.Send(msg)
			return err
		}
	}

	msg := tgbotapi.NewMessage(userID, p.Text)
	msg.DisableWebPagePreview = true
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	_, err := s.bot.Send(msg)
	return err
}
