package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/state"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/storage"
)

func newTestRepository(t *testing.T) *YAMLRepository {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(st)
}

func TestYAMLRepositoryLoadMissingReturnsFresh(t *testing.T) {
	repo := newTestRepository(t)

	s, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Interrupts)
	assert.Equal(t, state.CurrentVersion, s.Version)
	assert.Equal(t, state.Idle{}, s.UserState.Session())
}

func TestYAMLRepositorySaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	s := state.NewState()
	s.Interrupts["t1"] = &state.StoredInterrupt{
		Data: &interrupt.Record{
			ThreadID:   "t1",
			ActionKind: interrupt.KindSendCalendarInvite,
			Calendar: interrupt.CalendarInvite{
				Title:  "Sync",
				Emails: []string{"a@b.com"},
			},
		},
		Status:    state.StatusAwaitingResponse,
		ChatID:    42,
		MessageID: 9,
	}
	s.UserState = state.NewSessionState(state.CalendarEdit{
		ThreadID: "t1",
		Step:     state.StepEmails,
		Draft:    interrupt.CalendarInvite{Title: "Sync"},
	})
	require.NoError(t, repo.Save(ctx, s))

	restored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, restored.Interrupts, "t1")
	assert.Equal(t, state.StatusAwaitingResponse, restored.Interrupts["t1"].Status)
	assert.Equal(t, "Sync", restored.Interrupts["t1"].Data.Calendar.Title)
	assert.Equal(t, state.CalendarEdit{
		ThreadID: "t1",
		Step:     state.StepEmails,
		Draft:    interrupt.CalendarInvite{Title: "Sync"},
	}, restored.UserState.Session())
}
