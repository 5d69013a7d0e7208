package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
)

func TestFormatDatetime(t *testing.T) {
	tests := []struct {
		name string
		iso  string
		want string
	}{
		{name: "empty", iso: "", want: "not specified"},
		{name: "naive iso", iso: "2024-04-16T15:00:00", want: "April 16, 2024 at 03:00 PM"},
		{name: "utc suffix", iso: "2024-04-16T09:30:00Z", want: "April 16, 2024 at 09:30 AM"},
		{name: "garbage passes through", iso: "next tuesday", want: "next tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDatetime(tt.iso))
		})
	}
}

func TestFormatInterruptMessageEscapesRemoteText(t *testing.T) {
	rec := &interrupt.Record{
		ThreadID:      "abcdef123456",
		ActionKind:    interrupt.KindQuestion,
		ActionContent: `<script>alert("x")</script> ok?`,
		EmailSender:   "mallory <evil@example.com>",
		EmailSubject:  "a & b",
	}
	msg := FormatInterruptMessage(rec)

	assert.NotContains(t, msg, "<script>")
	assert.Contains(t, msg, "&lt;script&gt;")
	assert.Contains(t, msg, "mallory &lt;evil@example.com&gt;")
	assert.Contains(t, msg, "a &amp; b")
	assert.Contains(t, msg, "❓ <b>Question</b>")
	assert.Contains(t, msg, "<i>ID: abcdef12</i>")
}

func TestFormatInterruptMessageEmailPreviewTruncated(t *testing.T) {
	rec := &interrupt.Record{
		ThreadID:     "t1",
		ActionKind:   interrupt.KindResponseEmailDraft,
		EmailContent: strings.Repeat("a", 200),
	}
	msg := FormatInterruptMessage(rec)

	assert.Contains(t, msg, "<b>Email Preview:</b>")
	assert.Contains(t, msg, strings.Repeat("a", 150)+"...")
	assert.NotContains(t, msg, strings.Repeat("a", 151))
	assert.Contains(t, msg, "Email Draft")
	assert.Contains(t, msg, "AI Assistant")
}

func TestTruncatePreviewKeepsRuneBoundary(t *testing.T) {
	content := strings.Repeat("a", previewLimit-1) + "日本語"
	preview := truncatePreview(content)

	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, strings.Repeat("a", previewLimit-1)+"...", preview)
}

func TestFormatInterruptMessageCalendar(t *testing.T) {
	rec := &interrupt.Record{
		ThreadID:   "t1",
		ActionKind: interrupt.KindSendCalendarInvite,
		Calendar: interrupt.CalendarInvite{
			Title:     "Sync",
			StartTime: "2024-01-01T10:00:00",
			EndTime:   "2024-01-01T11:00:00",
			Emails:    []string{"a@b.com", "c@d.org"},
		},
	}
	msg := FormatInterruptMessage(rec)

	assert.Contains(t, msg, "<b>Title:</b> Sync")
	assert.Contains(t, msg, "<b>Start:</b> January 01, 2024 at 10:00 AM")
	assert.Contains(t, msg, "<b>Attendees:</b> a@b.com, c@d.org")
	assert.Contains(t, msg, "approve, edit, or reject this calendar invite")
}

func TestResponseKeyboard(t *testing.T) {
	t.Run("question offers respond and ignore", func(t *testing.T) {
		kb := ResponseKeyboard(interrupt.KindQuestion, "t1")
		require.Len(t, kb.InlineKeyboard, 1)
		require.Len(t, kb.InlineKeyboard[0], 2)
		assert.Equal(t, "respond_t1", *kb.InlineKeyboard[0][0].CallbackData)
		assert.Equal(t, "ignore_t1", *kb.InlineKeyboard[0][1].CallbackData)
	})

	t.Run("calendar edit routes to guided flow", func(t *testing.T) {
		kb := ResponseKeyboard(interrupt.KindSendCalendarInvite, "t1")
		require.Len(t, kb.InlineKeyboard, 2)
		assert.Equal(t, "edit_calendar_t1", *kb.InlineKeyboard[0][1].CallbackData)
	})

	t.Run("email draft has four buttons", func(t *testing.T) {
		kb := ResponseKeyboard(interrupt.KindResponseEmailDraft, "t1")
		require.Len(t, kb.InlineKeyboard, 2)
		assert.Equal(t, "edit_t1", *kb.InlineKeyboard[0][1].CallbackData)
	})

	t.Run("unknown kind gets the permissive minimum", func(t *testing.T) {
		kb := ResponseKeyboard(interrupt.Kind("ResponseTask"), "t1")
		require.Len(t, kb.InlineKeyboard, 1)
	})
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		data       string
		wantAction string
		wantThread string
	}{
		{data: "accept_thread-1", wantAction: "accept", wantThread: "thread-1"},
		{data: "edit_calendar_thread-1", wantAction: "edit_calendar", wantThread: "thread-1"},
		{data: "edit_thread_with_underscores", wantAction: "edit", wantThread: "thread_with_underscores"},
		{data: "bogus", wantAction: "unknown", wantThread: ""},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			action, threadID := ParseCallbackData(tt.data)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantThread, threadID)
		})
	}
}

func TestStripHTML(t *testing.T) {
	rendered := "❓ <b>Question</b>\n\n<a href='https://mail.google.com/'>Open Gmail</a>\n<i>ID: abc</i> &amp; more"
	plain := StripHTML(rendered)

	assert.NotContains(t, plain, "<b>")
	assert.NotContains(t, plain, "<a ")
	assert.Contains(t, plain, "Open Gmail")
	assert.Contains(t, plain, "& more")
}

func TestStripHTMLRemovesCodeTags(t *testing.T) {
	plain := StripHTML("type <code>/keep</code> to keep the current title")

	assert.NotContains(t, plain, "<code>")
	assert.NotContains(t, plain, "</code>")
	assert.Contains(t, plain, "type /keep to keep")
}
