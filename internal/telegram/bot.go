package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/davrell/codecity/internal/dispatcher"
	"github.com/davrell/codecity/internal/models"
	"github.com/davrell/codecity/internal/transcript"
)

// Bot exposes the console over Telegram: every text message is run through
// the same classify-and-dispatch path as the terminal, and whatever the
// dispatch appended to the transcript is sent back as the reply.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *dispatcher.Dispatcher
	log        *transcript.Log
	logger     *zap.Logger
}

func New(token string, d *dispatcher.Dispatcher, log *transcript.Log, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:        api,
		dispatcher: d,
		log:        log,
		logger:     logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		// Messages are handled sequentially: one command in flight at a
		// time, same as the terminal surface.
		b.handleMessage(ctx, update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	text := message.Text
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.sendMessage(message.Chat.ID, "Code City console online. Speak plainly; I interpret natural language.")
			return
		case "help":
			text = "help"
		default:
			// Other slash commands go through the interpreter like any text.
			text = strings.TrimSpace(message.Command() + " " + message.CommandArguments())
		}
	}

	before := b.log.Len()
	b.dispatcher.HandleCommand(ctx, text)

	reply := b.renderDelta(before)
	if reply == "" {
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	msg.ReplyToMessageID = message.MessageID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

// renderDelta formats everything appended to the transcript since the given
// length, minus the user's own echo. After a clear the whole remaining
// transcript is the delta.
func (b *Bot) renderDelta(since int) string {
	messages := b.log.Snapshot()
	if since > len(messages) {
		since = 0
	}

	var lines []string
	for _, msg := range messages[since:] {
		if msg.Sender == models.SenderUser || msg.Category == models.CategoryNLUStatus {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", msg.Sender, msg.Text))
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
