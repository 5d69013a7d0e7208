package resume

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

type fakeSubmitAPI struct {
	failures int
	calls    []any
}

func (f *fakeSubmitAPI) SubmitResume(_ context.Context, _ string, payload any) error {
	f.calls = append(f.calls, payload)
	if len(f.calls) <= f.failures {
		return errors.New("rejected")
	}
	return nil
}

func mustBuild(t *testing.T) *Command {
	t.Helper()
	cmd, err := Build(Request{
		ThreadID: "t1",
		Kind:     interrupt.KindQuestion,
		Type:     interrupt.ResponseResponse,
		Content:  "go ahead",
	})
	require.NoError(t, err)
	return cmd
}

func TestSubmitFirstShapeAccepted(t *testing.T) {
	api := &fakeSubmitAPI{}
	err := NewSubmitter(api).Submit(context.Background(), "t1", mustBuild(t))
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	assert.IsType(t, &Command{}, api.calls[0])
}

func TestSubmitFallsBackToFlattenedShape(t *testing.T) {
	api := &fakeSubmitAPI{failures: 1}
	err := NewSubmitter(api).Submit(context.Background(), "t1", mustBuild(t))
	require.NoError(t, err)
	require.Len(t, api.calls, 2)

	flat, ok := api.calls[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "response", flat["type"])
	assert.Equal(t, "go ahead", flat["args"])
	assert.Equal(t, DefaultAssistantID, flat["assistant_id"])
}

func TestSubmitTriesReconstructedShapeLast(t *testing.T) {
	api := &fakeSubmitAPI{failures: 2}
	err := NewSubmitter(api).Submit(context.Background(), "t1", mustBuild(t))
	require.NoError(t, err)
	require.Len(t, api.calls, 3)

	rebuilt, ok := api.calls[2].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultAssistantID, rebuilt["assistant_id"])
	assert.Contains(t, rebuilt, "command")
}

func TestSubmitExhaustedShapesReportFailure(t *testing.T) {
	api := &fakeSubmitAPI{failures: 3}
	err := NewSubmitter(api).Submit(context.Background(), "t1", mustBuild(t))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Unavailable))
	assert.Len(t, api.calls, 3)
}

func TestSubmitRejectsEmptyCommand(t *testing.T) {
	api := &fakeSubmitAPI{}
	err := NewSubmitter(api).Submit(context.Background(), "t1", &Command{})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Empty(t, api.calls)
}
