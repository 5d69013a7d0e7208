package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

func TestBuildRejectsDisallowedResponseType(t *testing.T) {
	_, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.KindQuestion,
		Type:     interrupt.ResponseAccept,
	})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestBuildResponse(t *testing.T) {
	cmd, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.KindQuestion,
		Type:     interrupt.ResponseResponse,
		Content:  "use the afternoon slot",
	})
	require.NoError(t, err)
	require.Len(t, cmd.Command.Resume, 1)
	assert.Equal(t, "response", cmd.Command.Resume[0].Type)
	assert.Equal(t, "use the afternoon slot", cmd.Command.Resume[0].Args)
	assert.Equal(t, DefaultAssistantID, cmd.AssistantID)
}

func TestBuildAcceptAndIgnoreCarryNoArgs(t *testing.T) {
	for _, rt := range []interrupt.ResponseType{interrupt.ResponseAccept, interrupt.ResponseIgnore} {
		cmd, err := Build(Request{
			ThreadID:    "t1",
			Kind:        interrupt.KindResponseEmailDraft,
			Type:        rt,
			AssistantID: "email-agent",
		})
		require.NoError(t, err)
		assert.Equal(t, string(rt), cmd.Command.Resume[0].Type)
		assert.Nil(t, cmd.Command.Resume[0].Args)
		assert.Equal(t, "email-agent", cmd.AssistantID)
	}
}

func TestBuildEditEmailDraft(t *testing.T) {
	cmd, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.KindResponseEmailDraft,
		Type:     interrupt.ResponseEdit,
		Content:  "Revised draft body.",
	})
	require.NoError(t, err)
	args, ok := cmd.Command.Resume[0].Args.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ResponseEmailDraft", args["action"])
	assert.Equal(t, map[string]any{
		"content":        "Revised draft body.",
		"new_recipients": []string{},
	}, args["args"])
}

func TestBuildEditCalendarInviteFromJSON(t *testing.T) {
	cmd, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.KindSendCalendarInvite,
		Type:     interrupt.ResponseEdit,
		Content:  `{"title":"Sync","start_time":"2024-01-01T10:00:00","end_time":"2024-01-01T11:00:00","emails":["a@b.com"]}`,
	})
	require.NoError(t, err)
	args, ok := cmd.Command.Resume[0].Args.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SendCalendarInvite", args["action"])
	assert.Equal(t, map[string]any{
		"emails":     []string{"a@b.com"},
		"title":      "Sync",
		"start_time": "2024-01-01T10:00:00",
		"end_time":   "2024-01-01T11:00:00",
	}, args["args"])
}

func TestBuildEditCalendarInviteFallsBackOnBadJSON(t *testing.T) {
	cmd, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.KindSendCalendarInvite,
		Type:     interrupt.ResponseEdit,
		Content:  "move it to Friday",
	})
	require.NoError(t, err)
	args := cmd.Command.Resume[0].Args.(map[string]any)
	assert.Equal(t, map[string]any{"content": "move it to Friday"}, args["args"])
}

func TestBuildNormalizesAliasKinds(t *testing.T) {
	cmd, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.Kind("email"),
		Type:     interrupt.ResponseAccept,
	})
	require.NoError(t, err)
	assert.Equal(t, "accept", cmd.Command.Resume[0].Type)
}

func TestEncodeCalendarInviteRoundTrip(t *testing.T) {
	encoded, err := EncodeCalendarInvite(interrupt.CalendarInvite{
		Title:     "Sync",
		StartTime: "2024-01-01T10:00:00",
		EndTime:   "2024-01-01T11:00:00",
		Emails:    []string{"a@b.com", "c@d.org"},
	})
	require.NoError(t, err)

	args := calendarEditArgs(encoded)
	assert.Equal(t, "Sync", args["title"])
	assert.Equal(t, []string{"a@b.com", "c@d.org"}, args["emails"])
}
