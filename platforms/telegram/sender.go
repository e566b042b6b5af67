package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sirupsen/logrus"
)

// Sender delivers messages through a Telegram bot.
type Sender struct {
	bot *telego.Bot
}

// NewSender creates the bot client. Telegram stays unusable (every send
// fails fast) when no token is configured.
func NewSender(token string) (*Sender, error) {
	if token == "" {
		return &Sender{}, nil
	}
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Sender{bot: bot}, nil
}

// Send delivers the message to a numeric chat id or a @username. When the
// identifier is not numeric, the connection's stored chat id takes priority
// over the raw @username form.
func (s *Sender) Send(ctx context.Context, conn platform.Connection, identifier, message string) error {
	if s.bot == nil {
		return fmt.Errorf("telegram bot not configured")
	}

	chatID, err := resolveChatID(conn, identifier)
	if err != nil {
		return err
	}

	params := telego.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	if _, err := s.bot.SendMessage(ctx, &params); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}

	logrus.Debugf("[TELEGRAM] Delivered message to %s", identifier)
	return nil
}

func resolveChatID(conn platform.Connection, identifier string) (telego.ChatID, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return telego.ChatID{ID: id}, nil
	}
	if conn.ChatID != "" {
		if id, err := strconv.ParseInt(conn.ChatID, 10, 64); err == nil {
			return telego.ChatID{ID: id}, nil
		}
	}
	if strings.HasPrefix(identifier, "@") {
		return telego.ChatID{Username: identifier}, nil
	}
	return telego.ChatID{}, fmt.Errorf("invalid telegram identifier: %q", identifier)
}
