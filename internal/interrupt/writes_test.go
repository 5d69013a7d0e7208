package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmailInfo(t *testing.T) {
	t.Run("nil writes", func(t *testing.T) {
		info := extractEmailInfo(nil)
		assert.Equal(t, UnknownValue, info.Sender)
		assert.Equal(t, UnknownValue, info.Subject)
		assert.Empty(t, info.Content)
	})

	t.Run("rewrite tool call supplies draft body", func(t *testing.T) {
		writes := map[string]any{
			"rewrite": map[string]any{
				"messages": []any{
					map[string]any{
						"tool_calls": []any{
							map[string]any{
								"name": "ResponseEmailDraft",
								"args": map[string]any{"content": "Dear Bob, yes."},
							},
						},
					},
				},
			},
		}
		info := extractEmailInfo(writes)
		assert.Equal(t, "Dear Bob, yes.", info.Content)
	})

	t.Run("openai tool call arguments are decoded", func(t *testing.T) {
		writes := map[string]any{
			"draft_response": map[string]any{
				"messages": []any{
					map[string]any{
						"additional_kwargs": map[string]any{
							"tool_calls": []any{
								map[string]any{
									"function": map[string]any{
										"name":      "ResponseEmailDraft",
										"arguments": `{"content": "Decoded body"}`,
									},
								},
							},
						},
					},
				},
			},
		}
		info := extractEmailInfo(writes)
		assert.Equal(t, "Decoded body", info.Content)
	})

	t.Run("start email supplies metadata", func(t *testing.T) {
		writes := map[string]any{
			"__start__": map[string]any{
				"email": map[string]any{
					"from_email":   "carol@example.com",
					"subject":      "Budget",
					"page_content": "Numbers attached.",
					"send_time":    "2024-03-01T09:00:00Z",
				},
			},
		}
		info := extractEmailInfo(writes)
		assert.Equal(t, "carol@example.com", info.Sender)
		assert.Equal(t, "Budget", info.Subject)
		assert.Equal(t, "Numbers attached.", info.Content)
		assert.Equal(t, "2024-03-01T09:00:00Z", info.SendTime)
	})

	t.Run("triage sub object is last resort for metadata", func(t *testing.T) {
		writes := map[string]any{
			"triage_input": map[string]any{
				"triage": map[string]any{
					"email_subject": "Follow up",
					"email_sender":  "dave@example.com",
				},
			},
		}
		info := extractEmailInfo(writes)
		assert.Equal(t, "dave@example.com", info.Sender)
		assert.Equal(t, "Follow up", info.Subject)
	})
}

func TestExtractActionInfo(t *testing.T) {
	t.Run("rewrite tool call names the action", func(t *testing.T) {
		writes := map[string]any{
			"rewrite": map[string]any{
				"messages": []any{
					map[string]any{
						"tool_calls": []any{
							map[string]any{
								"name": "Question",
								"args": map[string]any{"question": "Which slot works?"},
							},
						},
					},
				},
			},
		}
		info := extractActionInfo(writes)
		assert.Equal(t, "Question", info.Kind)
		assert.Equal(t, "Which slot works?", info.Content)
	})

	t.Run("calendar args travel with the tool call", func(t *testing.T) {
		writes := map[string]any{
			"draft_response": map[string]any{
				"messages": []any{
					map[string]any{
						"tool_calls": []any{
							map[string]any{
								"name": "SendCalendarInvite",
								"args": map[string]any{
									"title":      "Standup",
									"start_time": "2024-05-01T10:00:00",
									"end_time":   "2024-05-01T10:15:00",
									"emails":     []any{"a@b.com", "c@d.org"},
								},
							},
						},
					},
				},
			},
		}
		info := extractActionInfo(writes)
		assert.Equal(t, "SendCalendarInvite", info.Kind)
		assert.Equal(t, CalendarInvite{
			Title:     "Standup",
			StartTime: "2024-05-01T10:00:00",
			EndTime:   "2024-05-01T10:15:00",
			Emails:    []string{"a@b.com", "c@d.org"},
		}, info.Calendar)
	})

	t.Run("triage response of no is not an action", func(t *testing.T) {
		writes := map[string]any{
			"triage_input": map[string]any{
				"triage": map[string]any{"response": "no"},
			},
		}
		info := extractActionInfo(writes)
		assert.Equal(t, UnknownValue, info.Kind)
	})

	t.Run("generic key scan matches known kinds", func(t *testing.T) {
		writes := map[string]any{
			"notify": map[string]any{"content": "FYI: deploy done"},
		}
		info := extractActionInfo(writes)
		assert.Equal(t, "notify", info.Kind)
		assert.Equal(t, "FYI: deploy done", info.Content)
	})

	t.Run("question mark in plain messages infers a question", func(t *testing.T) {
		writes := map[string]any{
			"messages": []any{
				map[string]any{"content": "Should I reschedule the call?"},
			},
		}
		info := extractActionInfo(writes)
		assert.Equal(t, string(KindQuestion), info.Kind)
		assert.Equal(t, "Should I reschedule the call?", info.Content)
	})
}
