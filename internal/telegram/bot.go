package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/conversation"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

const updateTimeout = 30

// Checker runs one discovery cycle on demand, for the /check command.
type Checker interface {
	RunOnce(ctx context.Context) (delivered int, err error)
}

// Bot is the Telegram transport. It owns the update loop and delegates every
// decision to the conversation machine; only the admin user is served.
type Bot struct {
	api         *tgbotapi.BotAPI
	machine     *conversation.Machine
	checker     Checker
	adminUserID int64
}

func NewBot(token string, adminUserID int64, machine *conversation.Machine, checker Checker) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	return &Bot{
		api:         api,
		machine:     machine,
		checker:     checker,
		adminUserID: adminUserID,
	}, nil
}

// Run processes updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot"},
		tgbotapi.BotCommand{Command: "check", Description: "Check for new interrupts"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help information"},
	)); err != nil {
		slog.Warn("could not register bot commands", "error", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(cfg)
	slog.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) authorized(userID int64) bool {
	return userID == b.adminUserID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.authorized(msg.From.ID) {
		b.send(msg.Chat.ID, "Sorry, you are not authorized to use this bot.", false)
		return
	}

	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID,
			"👋 Welcome to the Executive AI Assistant!\n\n"+
				"I'll notify you when there are any tasks that require your input.\n\n"+
				"Commands:\n"+
				"/check - Check for new interrupts\n"+
				"/help - Show this help menu", false)
		return
	case "help":
		b.send(msg.Chat.ID,
			"📋 Executive AI Assistant Commands:\n\n"+
				"/check - Check for new interrupts\n"+
				"/help - Show this help menu", false)
		return
	case "check":
		b.runCheck(ctx, msg.Chat.ID)
		return
	}

	// /keep and /cancel are flow control inside the calendar edit and must
	// reach the machine like any other text.
	b.typing(msg.Chat.ID)
	reply, err := b.machine.HandleMessage(ctx, msg.Text)
	if err != nil {
		// Rejected operator input already carries a re-prompt in the reply.
		if cerr.IsCode(err, cerr.InvalidArgument) {
			slog.Warn("operator input rejected", "error", err)
		} else {
			slog.Error("message handling failed", "error", err)
		}
	}
	if !reply.Empty() {
		b.send(msg.Chat.ID, reply.Text, reply.HTML)
	}
}

func (b *Bot) runCheck(ctx context.Context, chatID int64) {
	b.typing(chatID)
	status := b.send(chatID, "Checking for interrupts...", false)

	delivered, err := b.checker.RunOnce(ctx)
	switch {
	case err != nil:
		slog.Error("manual check failed", "error", err)
		b.editOrSend(chatID, status, "❌ Error checking interrupts. Please try again.", false)
	case delivered == 0:
		b.editOrSend(chatID, status, "No interrupts found. All tasks are proceeding normally.", false)
	default:
		b.editOrSend(chatID, status, fmt.Sprintf("✅ Processed %d interrupt(s). Please respond to each one.", delivered), false)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Debug("could not answer callback query", "error", err)
	}
	if query.From == nil || !b.authorized(query.From.ID) || query.Message == nil {
		return
	}

	action, threadID := ParseCallbackData(query.Data)
	reply, err := b.machine.HandleCallback(ctx, action, threadID, query.Message.Text)
	if err != nil {
		slog.Error("callback handling failed", "action", action, "thread_id", threadID, "error", err)
	}
	if reply.Empty() {
		return
	}
	if reply.EditOrigin {
		b.edit(query.Message.Chat.ID, query.Message.MessageID, reply.Text, reply.HTML)
	} else {
		b.send(query.Message.Chat.ID, reply.Text, reply.HTML)
	}
}

// NotifyInterrupt delivers a new interrupt to the admin chat with its
// response keyboard. HTML failures degrade to a plain-text rendering.
func (b *Bot) NotifyInterrupt(_ context.Context, rec *interrupt.Record) (int64, int, error) {
	text := FormatInterruptMessage(rec)
	msg := tgbotapi.NewMessage(b.adminUserID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = ResponseKeyboard(rec.ActionKind, rec.ThreadID)
	msg.DisableWebPagePreview = true

	sent, err := b.api.Send(msg)
	if err != nil {
		slog.Warn("html message rejected, retrying as plain text", "thread_id", rec.ThreadID, "error", err)
		plain := tgbotapi.NewMessage(b.adminUserID, StripHTML(text))
		plain.ReplyMarkup = ResponseKeyboard(rec.ActionKind, rec.ThreadID)
		sent, err = b.api.Send(plain)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to deliver interrupt: %w", err)
		}
	}
	return sent.Chat.ID, sent.MessageID, nil
}

// send posts a message, falling back to plain text when HTML is rejected.
// It returns the sent message ID, or 0 when nothing could be delivered.
func (b *Bot) send(chatID int64, text string, asHTML bool) int {
	msg := tgbotapi.NewMessage(chatID, text)
	if asHTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	sent, err := b.api.Send(msg)
	if err != nil && asHTML {
		msg = tgbotapi.NewMessage(chatID, StripHTML(text))
		sent, err = b.api.Send(msg)
	}
	if err != nil {
		slog.Error("could not send message", "chat_id", chatID, "error", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string, asHTML bool) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if asHTML {
		edit.ParseMode = tgbotapi.ModeHTML
	}
	if _, err := b.api.Send(edit); err != nil && asHTML {
		plain := tgbotapi.NewEditMessageText(chatID, messageID, StripHTML(text))
		if _, err := b.api.Send(plain); err != nil {
			slog.Error("could not edit message", "chat_id", chatID, "message_id", messageID, "error", err)
		}
	}
}

func (b *Bot) editOrSend(chatID int64, messageID int, text string, asHTML bool) {
	if messageID != 0 {
		b.edit(chatID, messageID, text, asHTML)
		return
	}
	b.send(chatID, text, asHTML)
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.Debug("could not send typing action", "error", err)
	}
}
