package resume

import (
	"encoding/json"
	"strings"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

// DefaultAssistantID is used when the extracted record carried no assistant.
const DefaultAssistantID = "main"

// Item is one entry of the resume list the workflow API consumes.
type Item struct {
	Type string `json:"type"`
	Args any    `json:"args"`
}

type envelope struct {
	Resume []Item `json:"resume"`
}

// Command is the structured resume payload. It is the first and preferred
// wire shape; the submitter derives the fallback shapes from it.
type Command struct {
	Command     envelope `json:"command"`
	AssistantID string   `json:"assistant_id,omitempty"`
}

// Request describes one operator decision to deliver to a thread.
type Request struct {
	ThreadID    string
	Kind        interrupt.Kind
	Type        interrupt.ResponseType
	Content     string
	AssistantID string
}

// Build validates the decision against the action kind and produces the
// structured command. Disallowed response types fail here, before any network
// traffic.
func Build(req Request) (*Command, error) {
	kind := interrupt.Normalize(string(req.Kind))
	if !kind.Allows(req.Type) {
		return nil, cerr.NewDisallowedResponseType(string(req.Type), string(kind))
	}

	assistantID := req.AssistantID
	if assistantID == "" {
		assistantID = DefaultAssistantID
	}
	cmd := &Command{AssistantID: assistantID}
	cmd.Command.Resume = []Item{{Type: string(req.Type), Args: buildArgs(kind, req.Type, req.Content)}}
	return cmd, nil
}

// buildArgs shapes the resume item arguments. Free-text responses travel as a
// bare string, accept and ignore carry no arguments, edits carry a nested
// action request matching the kind being edited.
func buildArgs(kind interrupt.Kind, rt interrupt.ResponseType, content string) any {
	switch rt {
	case interrupt.ResponseResponse:
		return content
	case interrupt.ResponseAccept, interrupt.ResponseIgnore:
		return nil
	case interrupt.ResponseEdit:
		return editArgs(kind, content)
	}
	return content
}

func editArgs(kind interrupt.Kind, content string) map[string]any {
	switch kind {
	case interrupt.KindResponseEmailDraft:
		return map[string]any{
			"action": string(interrupt.KindResponseEmailDraft),
			"args": map[string]any{
				"content":        content,
				"new_recipients": []string{},
			},
		}
	case interrupt.KindSendCalendarInvite:
		return map[string]any{
			"action": string(interrupt.KindSendCalendarInvite),
			"args":   calendarEditArgs(content),
		}
	default:
		return map[string]any{
			"action": string(kind),
			"args":   map[string]any{"content": content},
		}
	}
}

// calendarEditArgs decodes the invite fields from a JSON document. Content
// that is not a JSON object is passed through untouched so the workflow can
// interpret it.
func calendarEditArgs(content string) map[string]any {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var invite interrupt.CalendarInvite
		if err := json.Unmarshal([]byte(trimmed), &invite); err == nil {
			emails := invite.Emails
			if emails == nil {
				emails = []string{}
			}
			return map[string]any{
				"emails":     emails,
				"title":      invite.Title,
				"start_time": invite.StartTime,
				"end_time":   invite.EndTime,
			}
		}
	}
	return map[string]any{"content": content}
}

// EncodeCalendarInvite serializes an invite for the edit content channel.
func EncodeCalendarInvite(invite interrupt.CalendarInvite) (string, error) {
	data, err := json.Marshal(invite)
	if err != nil {
		return "", cerr.NewError(cerr.Internal, "could not encode calendar invite", err)
	}
	return string(data), nil
}
