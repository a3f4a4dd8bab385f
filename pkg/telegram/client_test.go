package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	errs []error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func TestSendMessage_Markdown(t *testing.T) {
	bot := &fakeSender{}
	require.NoError(t, newBotNotifier(bot, 42).SendMessage("*hello*"))

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
	assert.True(t, bot.sent[0].DisableWebPagePreview)
}

func TestSendMessage_FallsBackToPlainText(t *testing.T) {
	bot := &fakeSender{errs: []error{errors.New("Bad Request: can't parse entities: unclosed bold")}}
	require.NoError(t, newBotNotifier(bot, 42).SendMessage("*broken"))

	require.Len(t, bot.sent, 2)
	assert.Empty(t, bot.sent[1].ParseMode)
	assert.Equal(t, "*broken", bot.sent[1].Text)
}

func TestSendMessage_Errors(t *testing.T) {
	bot := &fakeSender{errs: []error{errors.New("Forbidden: bot was blocked")}}
	n := newBotNotifier(bot, 42)

	assert.Error(t, n.SendMessage("hi"))
	assert.Len(t, bot.sent, 1)
	assert.ErrorIs(t, n.SendMessage("  "), ErrEmptyMessage)
}
