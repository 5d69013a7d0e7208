package state

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
)

// CurrentVersion is written into every persisted document.
const CurrentVersion = 1

// Status is the delivery lifecycle of a stored interrupt.
type Status string

const (
	StatusPending          Status = "pending"
	StatusSent             Status = "sent"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusCompleted        Status = "completed"
)

// StoredInterrupt is one tracked thread: the extracted record plus where and
// when it was delivered to the operator.
type StoredInterrupt struct {
	Data      *interrupt.Record `yaml:"data" json:"data"`
	Status    Status            `yaml:"status" json:"status"`
	MessageID int               `yaml:"message_id,omitempty" json:"message_id,omitempty"`
	ChatID    int64             `yaml:"chat_id,omitempty" json:"chat_id,omitempty"`
	Timestamp time.Time         `yaml:"timestamp" json:"timestamp"`
}

// Session is the operator's conversation position. Exactly one variant is
// active at a time; there is no way to hold a free-text wait and a calendar
// edit simultaneously.
type Session interface {
	sessionMode() string
}

// Idle means no response is being collected.
type Idle struct{}

// AwaitingText means the next free-text message answers the given thread,
// either as a direct response or as an edit.
type AwaitingText struct {
	ThreadID string
	Type     interrupt.ResponseType
}

// CalendarEdit is the guided invite edit, one step at a time.
type CalendarEdit struct {
	ThreadID string
	Step     CalendarStep
	Draft    interrupt.CalendarInvite
}

func (Idle) sessionMode() string         { return modeIdle }
func (AwaitingText) sessionMode() string { return modeAwaitingText }
func (CalendarEdit) sessionMode() string { return modeCalendarEdit }

// CalendarStep is the current prompt of the guided edit.
type CalendarStep string

const (
	StepTitle    CalendarStep = "title"
	StepDatetime CalendarStep = "datetime"
	StepEmails   CalendarStep = "emails"
)

// Next returns the step after the current one, false at the end.
func (s CalendarStep) Next() (CalendarStep, bool) {
	switch s {
	case StepTitle:
		return StepDatetime, true
	case StepDatetime:
		return StepEmails, true
	}
	return "", false
}

const (
	modeIdle         = "idle"
	modeAwaitingText = "awaiting_text"
	modeCalendarEdit = "calendar_edit"
)

// sessionDoc is the serialized form of a Session.
type sessionDoc struct {
	Mode         string                   `yaml:"mode" json:"mode"`
	ThreadID     string                   `yaml:"thread_id,omitempty" json:"thread_id,omitempty"`
	ResponseType interrupt.ResponseType   `yaml:"response_type,omitempty" json:"response_type,omitempty"`
	Step         CalendarStep             `yaml:"step,omitempty" json:"step,omitempty"`
	Draft        interrupt.CalendarInvite `yaml:"draft,omitempty" json:"draft,omitempty"`
}

func docFromSession(s Session) sessionDoc {
	switch v := s.(type) {
	case AwaitingText:
		return sessionDoc{Mode: modeAwaitingText, ThreadID: v.ThreadID, ResponseType: v.Type}
	case CalendarEdit:
		return sessionDoc{Mode: modeCalendarEdit, ThreadID: v.ThreadID, Step: v.Step, Draft: v.Draft}
	default:
		return sessionDoc{Mode: modeIdle}
	}
}

func (d sessionDoc) session() (Session, error) {
	switch d.Mode {
	case modeIdle, "":
		return Idle{}, nil
	case modeAwaitingText:
		return AwaitingText{ThreadID: d.ThreadID, Type: d.ResponseType}, nil
	case modeCalendarEdit:
		return CalendarEdit{ThreadID: d.ThreadID, Step: d.Step, Draft: d.Draft}, nil
	}
	return nil, fmt.Errorf("unknown session mode %q", d.Mode)
}

// SessionState wraps a Session for persistence. The zero value is idle.
type SessionState struct {
	s Session
}

func NewSessionState(s Session) SessionState {
	return SessionState{s: s}
}

// Session returns the wrapped variant, never nil.
func (b SessionState) Session() Session {
	if b.s == nil {
		return Idle{}
	}
	return b.s
}

func (b SessionState) MarshalYAML() (any, error) {
	return docFromSession(b.Session()), nil
}

func (b *SessionState) UnmarshalYAML(value *yaml.Node) error {
	var doc sessionDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	s, err := doc.session()
	if err != nil {
		return err
	}
	b.s = s
	return nil
}

// State is the whole persisted document. Every mutation rewrites it in full.
type State struct {
	Interrupts  map[string]*StoredInterrupt `yaml:"interrupts"`
	UserState   SessionState                `yaml:"user_state"`
	LastChecked time.Time                   `yaml:"last_checked"`
	Version     int                         `yaml:"version"`
}

// NewState returns an empty document at the current version.
func NewState() *State {
	return &State{
		Interrupts: map[string]*StoredInterrupt{},
		Version:    CurrentVersion,
	}
}
