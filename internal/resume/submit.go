package resume

import (
	"context"
	"log/slog"

	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

// SubmitAPI is the slice of the workflow client the submitter needs.
type SubmitAPI interface {
	SubmitResume(ctx context.Context, threadID string, payload any) error
}

// payloadStrategy renders one wire shape of a command. Older deployments
// reject the structured shape, so the strategies degrade from the canonical
// form down to a flat legacy one.
type payloadStrategy struct {
	name  string
	build func(cmd *Command) any
}

var strategies = []payloadStrategy{
	{name: "structured", build: structuredPayload},
	{name: "flattened", build: flattenedPayload},
	{name: "reconstructed", build: reconstructedPayload},
}

// structuredPayload is the canonical command envelope.
func structuredPayload(cmd *Command) any {
	return cmd
}

// flattenedPayload lifts the first resume item to the top level, the shape
// accepted by older deployments.
func flattenedPayload(cmd *Command) any {
	item := cmd.Command.Resume[0]
	payload := map[string]any{
		"type": item.Type,
		"args": item.Args,
	}
	if cmd.AssistantID != "" {
		payload["assistant_id"] = cmd.AssistantID
	}
	return payload
}

// reconstructedPayload rebuilds the envelope from scratch with the assistant
// always pinned, the last shape some deployments insist on.
func reconstructedPayload(cmd *Command) any {
	assistantID := cmd.AssistantID
	if assistantID == "" {
		assistantID = DefaultAssistantID
	}
	return map[string]any{
		"command": map[string]any{
			"resume": cmd.Command.Resume,
		},
		"assistant_id": assistantID,
	}
}

// Submitter delivers resume commands, degrading the payload shape until one
// is accepted.
type Submitter struct {
	api SubmitAPI
}

func NewSubmitter(api SubmitAPI) *Submitter {
	return &Submitter{api: api}
}

// Submit tries every payload strategy in order and stops at the first the
// API accepts. When all are rejected the thread's stored status stays
// untouched and the combined failure is reported.
func (s *Submitter) Submit(ctx context.Context, threadID string, cmd *Command) error {
	if cmd == nil || len(cmd.Command.Resume) == 0 {
		return cerr.NewError(cerr.InvalidArgument, "resume command has no items", nil)
	}
	var lastErr error
	for _, strategy := range strategies {
		err := s.api.SubmitResume(ctx, threadID, strategy.build(cmd))
		if err == nil {
			if strategy.name != strategies[0].name {
				slog.Info("resume accepted with fallback payload shape",
					"thread_id", threadID, "shape", strategy.name)
			}
			return nil
		}
		lastErr = err
		slog.Warn("resume payload rejected",
			"thread_id", threadID, "shape", strategy.name, "error", err)
	}
	return cerr.NewSubmissionFailure(threadID, lastErr)
}
