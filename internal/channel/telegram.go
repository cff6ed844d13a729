package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"orderbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram mirrors dispatched receipts to a Telegram chat. It is an
// outbound-only channel: nothing inbound from Telegram enters the
// pipeline.
type Telegram struct {
	token  string
	chatID int64
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

type TelegramConfig struct {
	Token  string
	ChatID string
	Logger *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	chatID, _ := strconv.ParseInt(strings.TrimSpace(cfg.ChatID), 10, 64)
	return &Telegram{
		token:  cfg.Token,
		chatID: chatID,
		logger: cfg.Logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and registers the outbound handler. Blocks
// until the context is cancelled.
func (t *Telegram) Start(ctx context.Context, bus domain.MessageBus) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram mirror connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)

	bus.OnOutbound("telegram", func(msg domain.OutboundMessage) {
		t.deliver(msg)
	})

	<-ctx.Done()
	t.logger.Info("telegram mirror stopping")
	return nil
}

func (t *Telegram) Stop() error {
	return nil
}

func (t *Telegram) Send(ctx context.Context, chatID string, content string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}
	_, err = t.bot.Send(tgbotapi.NewMessage(id, content))
	return err
}

func (t *Telegram) deliver(msg domain.OutboundMessage) {
	chatID := t.chatID
	if msg.ChatID != "" {
		if id, err := strconv.ParseInt(msg.ChatID, 10, 64); err == nil {
			chatID = id
		}
	}
	if chatID == 0 {
		t.logger.Warn("telegram mirror has no chat id, dropping message")
		return
	}

	if msg.Attachment != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  msg.Attachment.Name,
			Bytes: msg.Attachment.Data,
		})
		doc.Caption = msg.Content
		if _, err := t.bot.Send(doc); err != nil {
			t.logger.Error("telegram document send failed", "chat_id", chatID, "err", err)
		}
		return
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, msg.Content)); err != nil {
		t.logger.Error("telegram send failed", "chat_id", chatID, "err", err)
	}
}
