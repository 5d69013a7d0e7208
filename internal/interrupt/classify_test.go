package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{name: "canonical question", raw: "Question", want: KindQuestion},
		{name: "lowercase question", raw: "question", want: KindQuestion},
		{name: "email alias", raw: "email", want: KindResponseEmailDraft},
		{name: "draft alias", raw: "EmailDraft", want: KindResponseEmailDraft},
		{name: "canonical draft", raw: "ResponseEmailDraft", want: KindResponseEmailDraft},
		{name: "notify", raw: "Notify", want: KindNotify},
		{name: "invite alias", raw: "invite", want: KindSendCalendarInvite},
		{name: "calendar alias", raw: "calendar", want: KindSendCalendarInvite},
		{name: "mixed case invite", raw: "SENDCALENDARINVITE", want: KindSendCalendarInvite},
		{name: "empty", raw: "", want: KindUnknown},
		{name: "unknown sentinel", raw: "Unknown", want: KindUnknown},
		{name: "unmatched label passes through", raw: "ResponseTask", want: Kind("ResponseTask")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{
		"Question", "question", "email", "EmailDraft", "Notify",
		"invite", "calendar", "SendCalendarInvite", "Unknown", "", "ResponseTask",
	} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(string(once)), "raw=%q", raw)
	}
}

func TestAllowedResponses(t *testing.T) {
	assert.ElementsMatch(t, []ResponseType{ResponseResponse, ResponseIgnore}, KindQuestion.AllowedResponses())
	assert.ElementsMatch(t, []ResponseType{ResponseResponse, ResponseIgnore}, KindNotify.AllowedResponses())
	assert.ElementsMatch(t, AllResponseTypes, KindResponseEmailDraft.AllowedResponses())
	assert.ElementsMatch(t, AllResponseTypes, KindSendCalendarInvite.AllowedResponses())
	assert.ElementsMatch(t, AllResponseTypes, KindUnknown.AllowedResponses())
	assert.ElementsMatch(t, AllResponseTypes, Kind("ResponseTask").AllowedResponses())
}

func TestAllows(t *testing.T) {
	assert.False(t, KindQuestion.Allows(ResponseAccept))
	assert.False(t, KindQuestion.Allows(ResponseEdit))
	assert.True(t, KindQuestion.Allows(ResponseResponse))
	assert.True(t, KindSendCalendarInvite.Allows(ResponseEdit))
	assert.True(t, Kind("email").Allows(ResponseAccept))
}
