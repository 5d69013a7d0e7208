package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/langgraph"
)

func TestExtractFromStateCalendarInterruptArray(t *testing.T) {
	state := &langgraph.ThreadState{
		Values: map[string]any{
			"interrupts": []any{
				map[string]any{
					"interrupt_type": "SendCalendarInvite",
					"timestamp":      float64(5),
					"value": []any{
						map[string]any{
							"action_request": map[string]any{
								"action": "SendCalendarInvite",
								"args": map[string]any{
									"title":      "Sync",
									"start_time": "2024-01-01T10:00:00",
									"end_time":   "2024-01-01T11:00:00",
									"emails":     []any{"a@b.com"},
								},
							},
						},
					},
				},
			},
		},
	}

	rec := ExtractFromState("thread-1", state, nil)
	require.NotNil(t, rec)
	assert.Equal(t, KindSendCalendarInvite, rec.ActionKind)
	assert.Equal(t, CalendarInvite{
		Title:     "Sync",
		StartTime: "2024-01-01T10:00:00",
		EndTime:   "2024-01-01T11:00:00",
		Emails:    []string{"a@b.com"},
	}, rec.Calendar)
}

func TestExtractFromStateLatestInterruptWins(t *testing.T) {
	state := &langgraph.ThreadState{
		Values: map[string]any{
			"interrupts": []any{
				map[string]any{
					"interrupt_type": "Notify",
					"timestamp":      float64(1),
					"description":    "old notification",
				},
				map[string]any{
					"interrupt_type": "Question",
					"timestamp":      float64(9),
					"description":    "Which venue do you prefer?",
				},
			},
		},
	}

	rec := ExtractFromState("thread-2", state, nil)
	assert.Equal(t, KindQuestion, rec.ActionKind)
	assert.Equal(t, "Which venue do you prefer?", rec.ActionContent)
}

func TestExtractFromStateInterruptKindIsNotOverwrittenByWrites(t *testing.T) {
	state := &langgraph.ThreadState{
		Values: map[string]any{
			"interrupts": []any{
				map[string]any{
					"interrupt_type": "Notify",
					"timestamp":      float64(3),
					"description":    "heads up",
				},
			},
		},
		Metadata: map[string]any{
			"writes": map[string]any{
				"rewrite": map[string]any{
					"messages": []any{
						map[string]any{
							"tool_calls": []any{
								map[string]any{
									"name": "Question",
									"args": map[string]any{"question": "conflicting kind"},
								},
							},
						},
					},
				},
			},
		},
	}

	rec := ExtractFromState("thread-3", state, nil)
	assert.Equal(t, KindNotify, rec.ActionKind)
	assert.Equal(t, "heads up", rec.ActionContent)
}

func TestExtractFromStateTaskInterruptFallback(t *testing.T) {
	state := &langgraph.ThreadState{
		Tasks: []langgraph.Task{
			{
				ID: "task-1",
				Interrupts: []map[string]any{
					{
						"value": []any{
							map[string]any{
								"action_request": map[string]any{
									"action": "Question",
									"args":   map[string]any{"question": "Approve the draft?"},
								},
								"config":      map[string]any{"allow_edit": true},
								"description": "From: eve@example.com\nSubject: Draft\n\nPlease review.",
							},
						},
					},
				},
			},
		},
	}

	rec := ExtractFromState("thread-4", state, nil)
	assert.Equal(t, KindQuestion, rec.ActionKind)
	assert.Equal(t, "Approve the draft?", rec.ActionContent)
	assert.Equal(t, map[string]any{"allow_edit": true}, rec.Details.Config)
	assert.Equal(t, "eve@example.com", rec.EmailSender)
	assert.Equal(t, "Draft", rec.EmailSubject)
	assert.Equal(t, "Please review.", rec.EmailContent)
}

func TestExtractFromStateWritesThenHistory(t *testing.T) {
	state := &langgraph.ThreadState{
		Metadata: map[string]any{
			"assistant_id": "main",
			"writes": map[string]any{
				"rewrite": map[string]any{
					"messages": []any{
						map[string]any{
							"tool_calls": []any{
								map[string]any{
									"name": "ResponseEmailDraft",
									"args": map[string]any{"content": "Draft body from writes."},
								},
							},
						},
					},
				},
			},
		},
	}
	history := []langgraph.ThreadState{
		{
			Values: map[string]any{
				"writes": map[string]any{
					"__start__": map[string]any{
						"email": map[string]any{
							"from_email": "frank@example.com",
							"subject":    "Renewal",
						},
					},
				},
			},
		},
	}

	rec := ExtractFromState("thread-5", state, history)
	assert.Equal(t, KindResponseEmailDraft, rec.ActionKind)
	assert.Equal(t, "Draft body from writes.", rec.EmailContent)
	assert.Equal(t, "frank@example.com", rec.EmailSender)
	assert.Equal(t, "Renewal", rec.EmailSubject)
	assert.Equal(t, "main", rec.AssistantID)
}

func TestExtractFromStateInference(t *testing.T) {
	tests := []struct {
		name string
		prep func(rec *Record)
		want Kind
	}{
		{
			name: "email content implies a draft",
			prep: func(rec *Record) { rec.EmailContent = "body" },
			want: KindResponseEmailDraft,
		},
		{
			name: "calendar title implies an invite",
			prep: func(rec *Record) { rec.Calendar.Title = "Sync" },
			want: KindSendCalendarInvite,
		},
		{
			name: "bare action content implies a question",
			prep: func(rec *Record) { rec.ActionContent = "what now" },
			want: KindQuestion,
		},
		{
			name: "nothing stays unknown",
			prep: func(rec *Record) {},
			want: KindUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord("t")
			tt.prep(rec)
			phaseInference(nil, rec)
			assert.Equal(t, tt.want, rec.ActionKind)
		})
	}
}

func TestExtractFromStateCleanup(t *testing.T) {
	rec := NewRecord("t")
	rec.EmailContent = `Line one\nLine two\twith tab`
	rec.ActionKind = Kind("email")
	phaseCleanup(nil, rec)

	assert.Equal(t, "Line one\nLine two\twith tab", rec.EmailContent)
	assert.Equal(t, KindResponseEmailDraft, rec.ActionKind)
	assert.Equal(t, "Email Draft", rec.EmailSubject)
	assert.Equal(t, "AI Assistant", rec.EmailSender)
}

func TestExtractFromStateNilState(t *testing.T) {
	rec := ExtractFromState("t", nil, nil)
	require.NotNil(t, rec)
	assert.Equal(t, KindUnknown, rec.ActionKind)
	assert.Equal(t, UnknownValue, rec.EmailSender)
}
