package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrEmptyMessage is returned when there is nothing to send.
var ErrEmptyMessage = errors.New("telegram: empty message")

// Notifier delivers operator messages (story digests, failure alerts).
type Notifier interface {
	SendMessage(text string) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botNotifier struct {
	bot    sender
	chatID int64
}

// NewClient connects to the Bot API and returns a Notifier bound to one chat.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	if chatID == 0 {
		return nil, errors.New("telegram: chat id is required")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newBotNotifier(bot, chatID), nil
}

func newBotNotifier(bot sender, chatID int64) *botNotifier {
	return &botNotifier{bot: bot, chatID: chatID}
}

// SendMessage sends text as Markdown. Story titles come from article text, so a
// message Telegram refuses to parse is resent once as plain text.
func (n *botNotifier) SendMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := n.bot.Send(msg)
	if err == nil {
		return nil
	}
	if !isParseError(err) {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	plain := tgbotapi.NewMessage(n.chatID, text)
	plain.DisableWebPagePreview = true
	if _, err := n.bot.Send(plain); err != nil {
		return fmt.Errorf("failed to send plain telegram message: %w", err)
	}
	return nil
}

func isParseError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}
