package delivery

import (
	"bytes"
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"device-relay-bot/internal/event"
)

// TelegramMessenger implements Messenger over a telebot instance.
type TelegramMessenger struct {
	bot *telebot.Bot
}

func NewTelegramMessenger(bot *telebot.Bot) *TelegramMessenger {
	return &TelegramMessenger{bot: bot}
}

// Send maps one message descriptor onto the corresponding Bot API call.
func (m *TelegramMessenger) Send(ctx context.Context, chatID int64, msg event.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipient := telebot.ChatID(chatID)
	opts := &telebot.SendOptions{
		DisableWebPagePreview: msg.NoPreview,
	}
	if msg.Markdown {
		opts.ParseMode = telebot.ModeMarkdown
	}

	var err error
	switch msg.Kind {
	case event.KindText:
		_, err = m.bot.Send(recipient, msg.Text, opts)
	case event.KindPhoto:
		photo := &telebot.Photo{
			File:    telebot.FromReader(bytes.NewReader(msg.Body)),
			Caption: msg.Text,
		}
		_, err = m.bot.Send(recipient, photo, opts)
	case event.KindVideo:
		video := &telebot.Video{
			File:    telebot.FromReader(bytes.NewReader(msg.Body)),
			Caption: msg.Text,
		}
		_, err = m.bot.Send(recipient, video, opts)
	default:
		return fmt.Errorf("unsupported message kind %q", msg.Kind)
	}

	return err
}
