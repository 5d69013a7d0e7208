package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
)

const previewLimit = 150

// Callback actions carried in inline keyboard buttons.
const (
	CallbackAccept       = "accept"
	CallbackIgnore       = "ignore"
	CallbackRespond      = "respond"
	CallbackEdit         = "edit"
	CallbackEditCalendar = "edit_calendar"
	CallbackUnknown      = "unknown"
)

var kindIcons = map[interrupt.Kind]string{
	interrupt.KindQuestion:           "❓",
	interrupt.KindResponseEmailDraft: "📧",
	interrupt.KindNotify:             "🔔",
	interrupt.KindSendCalendarInvite: "📅",
	interrupt.KindUnknown:            "⚠️",
}

func iconFor(kind interrupt.Kind) string {
	if icon, ok := kindIcons[kind]; ok {
		return icon
	}
	return "🔷"
}

// formatDatetime renders an ISO timestamp for the operator. Unparseable
// values pass through untouched.
func formatDatetime(iso string) string {
	if iso == "" {
		return "not specified"
	}
	normalized := strings.Replace(iso, "Z", "+00:00", 1)
	for _, layout := range []string{"2006-01-02T15:04:05-07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Format("January 02, 2006 at 03:04 PM")
		}
	}
	return iso
}

// FormatInterruptMessage renders a record as a Telegram HTML message. All
// remote-sourced text is escaped here; nothing upstream is trusted to have
// done it.
func FormatInterruptMessage(rec *interrupt.Record) string {
	kind := interrupt.Normalize(string(rec.ActionKind))
	var b strings.Builder

	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", iconFor(kind), html.EscapeString(string(kind)))

	subject := rec.EmailSubject
	if subject == interrupt.UnknownValue || subject == "" {
		subject = "Email Draft"
	}
	sender := rec.EmailSender
	if sender == interrupt.UnknownValue || sender == "" {
		sender = "AI Assistant"
	}
	fmt.Fprintf(&b, "<b>Subject:</b> %s\n", html.EscapeString(subject))
	fmt.Fprintf(&b, "<b>From:</b> %s\n", html.EscapeString(sender))
	if rec.SendTime != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(formatDatetime(rec.SendTime)))
	}
	b.WriteString("\n")

	b.WriteString("<a href='https://mail.google.com/'>Open Gmail</a>\n\n")

	switch kind {
	case interrupt.KindQuestion:
		content := rec.ActionContent
		if content == "" {
			content = "No question content available"
		}
		fmt.Fprintf(&b, "<b>Question:</b>\n%s\n", html.EscapeString(content))

	case interrupt.KindResponseEmailDraft:
		if rec.ActionContent != "" {
			fmt.Fprintf(&b, "<b>Draft Summary:</b>\n%s\n\n", html.EscapeString(rec.ActionContent))
		} else if rec.EmailContent != "" {
			preview := truncatePreview(rec.EmailContent)
			fmt.Fprintf(&b, "<b>Email Preview:</b>\n%s\n\n", html.EscapeString(preview))
		}
		b.WriteString("Please approve, edit, or reject this email draft.")

	case interrupt.KindNotify:
		content := rec.ActionContent
		if content == "" {
			content = "No notification content available"
		}
		fmt.Fprintf(&b, "<b>Notification:</b>\n%s\n", html.EscapeString(content))

	case interrupt.KindSendCalendarInvite:
		b.WriteString("<b>Calendar Invite</b>\n")
		title := rec.Calendar.Title
		if title == "" {
			title = "No title"
		}
		fmt.Fprintf(&b, "<b>Title:</b> %s\n", html.EscapeString(title))
		fmt.Fprintf(&b, "<b>Start:</b> %s\n", html.EscapeString(formatDatetime(rec.Calendar.StartTime)))
		fmt.Fprintf(&b, "<b>End:</b> %s\n", html.EscapeString(formatDatetime(rec.Calendar.EndTime)))
		if len(rec.Calendar.Emails) > 0 {
			escaped := make([]string, len(rec.Calendar.Emails))
			for i, email := range rec.Calendar.Emails {
				escaped[i] = html.EscapeString(email)
			}
			fmt.Fprintf(&b, "<b>Attendees:</b> %s\n\n", strings.Join(escaped, ", "))
		} else {
			b.WriteString("\n")
		}
		b.WriteString("Please approve, edit, or reject this calendar invite.")
	}

	fmt.Fprintf(&b, "\n<i>ID: %s</i>", html.EscapeString(shortThreadID(rec.ThreadID)))
	return b.String()
}

// truncatePreview cuts long content at previewLimit bytes, stepping back to a
// rune boundary so the result stays valid UTF-8.
func truncatePreview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func shortThreadID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ResponseKeyboard builds the inline keyboard matching the record's allowed
// response types. Calendar invites route their edit button into the guided
// flow.
func ResponseKeyboard(kind interrupt.Kind, threadID string) tgbotapi.InlineKeyboardMarkup {
	switch interrupt.Normalize(string(kind)) {
	case interrupt.KindQuestion, interrupt.KindNotify:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Respond", CallbackRespond+"_"+threadID),
				tgbotapi.NewInlineKeyboardButtonData("❌ Ignore", CallbackIgnore+"_"+threadID),
			),
		)
	case interrupt.KindResponseEmailDraft:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Approve", CallbackAccept+"_"+threadID),
				tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", CallbackEdit+"_"+threadID),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💬 Respond", CallbackRespond+"_"+threadID),
				tgbotapi.NewInlineKeyboardButtonData("❌ Ignore", CallbackIgnore+"_"+threadID),
			),
		)
	case interrupt.KindSendCalendarInvite:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Approve", CallbackAccept+"_"+threadID),
				tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", CallbackEditCalendar+"_"+threadID),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💬 Respond", CallbackRespond+"_"+threadID),
				tgbotapi.NewInlineKeyboardButtonData("❌ Reject", CallbackIgnore+"_"+threadID),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Respond", CallbackRespond+"_"+threadID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Ignore", CallbackIgnore+"_"+threadID),
		),
	)
}

// ParseCallbackData splits button data into action and thread ID. The
// edit_calendar action embeds an underscore and is matched first.
func ParseCallbackData(data string) (action, threadID string) {
	if rest, ok := strings.CutPrefix(data, CallbackEditCalendar+"_"); ok {
		return CallbackEditCalendar, rest
	}
	action, threadID, ok := strings.Cut(data, "_")
	if !ok {
		return CallbackUnknown, ""
	}
	return action, threadID
}

// StripHTML converts a rendered HTML message to its plain-text fallback for
// deployments where HTML parse mode is rejected.
func StripHTML(s string) string {
	replacer := strings.NewReplacer(
		"<b>", "", "</b>", "",
		"<i>", "", "</i>", "",
		"<code>", "", "</code>", "",
	)
	s = replacer.Replace(s)
	for {
		start := strings.Index(s, "<a ")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], ">")
		if end < 0 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}
	s = strings.ReplaceAll(s, "</a>", "")
	return html.UnescapeString(s)
}
