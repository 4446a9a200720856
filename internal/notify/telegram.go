package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to the same chat to avoid
// 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends alert messages to one Telegram chat, spacing sends
// by telegramSendInterval.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier creates the bot client and verifies the connection.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	logger.Info("Telegram notifier initialized", "chat_id", chatID)
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Send delivers one message, waiting out the rate-limit interval if needed.
func (n *TelegramNotifier) Send(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); elapsed < telegramSendInterval {
		wait := telegramSendInterval - elapsed
		n.logger.Debug("Telegram send: waiting for rate limit", "wait_time", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, EscapeMarkdown(message))
	msg.ParseMode = tgbotapi.ModeMarkdown

	sendStart := time.Now()
	n.lastSend = sendStart
	_, err := n.bot.Send(msg)
	if err != nil {
		n.logger.Error("Telegram send: failed",
			"error", err, "send_duration", time.Since(sendStart))
		return fmt.Errorf("telegram send failed: %w", err)
	}

	n.logger.Info("Telegram send: success", "send_duration", time.Since(sendStart))
	return nil
}

// EscapeMarkdown escapes Telegram markdown control characters.
func EscapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
