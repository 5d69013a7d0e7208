package interrupt

// UnknownValue is the sentinel for string fields no extraction phase could
// populate.
const UnknownValue = "Unknown"

// CalendarInvite holds the editable fields of a SendCalendarInvite action.
type CalendarInvite struct {
	Title     string   `json:"title" yaml:"title"`
	StartTime string   `json:"start_time" yaml:"start_time"`
	EndTime   string   `json:"end_time" yaml:"end_time"`
	Emails    []string `json:"emails" yaml:"emails"`
}

// IsZero reports whether no invite field has been populated.
func (c CalendarInvite) IsZero() bool {
	return c.Title == "" && c.StartTime == "" && c.EndTime == "" && len(c.Emails) == 0
}

// Details carries the raw interrupt config and description for diagnostics.
type Details struct {
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// Record is the normalized action record extracted from one remote thread.
// It is overwritten, never merged, on re-extraction of the same thread.
type Record struct {
	ThreadID      string         `json:"thread_id" yaml:"thread_id"`
	ActionKind    Kind           `json:"action_kind" yaml:"action_kind"`
	ActionContent string         `json:"action_content" yaml:"action_content"`
	EmailSender   string         `json:"email_sender" yaml:"email_sender"`
	EmailSubject  string         `json:"email_subject" yaml:"email_subject"`
	EmailContent  string         `json:"email_content" yaml:"email_content"`
	EmailID       string         `json:"email_id,omitempty" yaml:"email_id,omitempty"`
	SendTime      string         `json:"send_time" yaml:"send_time"`
	AssistantID   string         `json:"assistant_id,omitempty" yaml:"assistant_id,omitempty"`
	Details       Details        `json:"interrupt_details" yaml:"interrupt_details"`
	Calendar      CalendarInvite `json:"calendar_invite" yaml:"calendar_invite"`
}

// NewRecord returns a record with every field at its default sentinel.
func NewRecord(threadID string) *Record {
	return &Record{
		ThreadID:     threadID,
		ActionKind:   KindUnknown,
		EmailSender:  UnknownValue,
		EmailSubject: UnknownValue,
	}
}
