package interrupt

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/langgraph"
)

// API is the subset of the workflow client the extractor needs.
type API interface {
	GetThreadState(ctx context.Context, threadID string) (*langgraph.ThreadState, error)
	GetThreadHistory(ctx context.Context, threadID string) ([]langgraph.ThreadState, error)
}

// Extractor builds normalized action records from remote thread state.
type Extractor struct {
	api API
}

func NewExtractor(api API) *Extractor {
	return &Extractor{api: api}
}

// Extract fetches the thread state and reconciles it into a record. A missing
// state is a hard error; missing history only narrows the sources.
func (e *Extractor) Extract(ctx context.Context, threadID string) (*Record, error) {
	state, err := e.api.GetThreadState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	history, err := e.api.GetThreadHistory(ctx, threadID)
	if err != nil {
		slog.Debug("thread history unavailable, extracting from current state only",
			"thread_id", threadID, "error", err)
		history = nil
	}
	return ExtractFromState(threadID, state, history), nil
}

// source is the raw material the phases read from. Phases communicate only
// through the record and the interruptFound flag.
type source struct {
	state          *langgraph.ThreadState
	history        []langgraph.ThreadState
	interruptFound bool
}

type phase struct {
	name string
	run  func(src *source, rec *Record)
}

// phases run in strict priority order. Each phase only fills fields an
// earlier phase left at their defaults; the interrupt phases are the one
// exception, they own action_kind outright.
var phases = []phase{
	{"metadata", phaseMetadata},
	{"interrupt_array", phaseInterruptArray},
	{"task_interrupts", phaseTaskInterrupts},
	{"writes", phaseWrites},
	{"history", phaseHistory},
	{"inference", phaseInference},
	{"cleanup", phaseCleanup},
}

// ExtractFromState runs every extraction phase over an already-fetched state
// document. history is expected newest first, as the API returns it.
func ExtractFromState(threadID string, state *langgraph.ThreadState, history []langgraph.ThreadState) *Record {
	rec := NewRecord(threadID)
	if state == nil {
		return rec
	}
	src := &source{state: state, history: history}
	for _, p := range phases {
		p.run(src, rec)
	}
	return rec
}

// fillEmpty sets dst when it is still empty and v is usable.
func fillEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// fillUnknown sets dst when it still holds the Unknown sentinel (or nothing)
// and v carries real information.
func fillUnknown(dst *string, v string) {
	if (*dst == "" || *dst == UnknownValue) && v != "" && v != UnknownValue {
		*dst = v
	}
}

func phaseMetadata(src *source, rec *Record) {
	md := src.state.Metadata
	if md == nil {
		return
	}
	if id := strAt(md, "assistant_id"); id != "" {
		rec.AssistantID = id
	} else if id := strAt(md, "graph_id"); id != "" {
		rec.AssistantID = id
	}
	rec.EmailID = strAt(md, "email_id")
}

// phaseInterruptArray reads the values.interrupts list, the most reliable
// source for the action kind. The entry with the highest timestamp wins, ties
// keep document order.
func phaseInterruptArray(src *source, rec *Record) {
	entries := sliceAt(src.state.Values, "interrupts")
	if len(entries) == 0 {
		return
	}

	var latest map[string]any
	var latestTS float64
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ts := timestampOf(entry)
		if latest == nil || ts > latestTS {
			latest = entry
			latestTS = ts
		}
	}
	if latest == nil {
		return
	}
	src.interruptFound = true

	interruptType := strAt(latest, "interrupt_type")
	if interruptType == "" {
		interruptType = UnknownValue
	}
	rec.ActionKind = Kind(interruptType)
	description := strAt(latest, "description")
	rec.ActionContent = description

	switch interruptType {
	case string(KindResponseEmailDraft):
		parsed := parseEmailFromDescription(description)
		rec.EmailSender = parsed.Sender
		rec.EmailSubject = parsed.Subject
		rec.EmailContent = parsed.Content
	case string(KindSendCalendarInvite), "ResponseCalendarInvite":
		rec.ActionKind = KindSendCalendarInvite
		if value := sliceAt(latest, "value"); len(value) > 0 {
			if first, ok := value[0].(map[string]any); ok {
				if request := mapAt(first, "action_request"); request != nil {
					rec.Calendar = calendarFromArgs(mapAt(request, "args"))
				}
			}
		}
	}
}

func timestampOf(entry map[string]any) float64 {
	switch v := entry["timestamp"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// phaseTaskInterrupts falls back to the first pending task interrupt when the
// interrupt array was absent.
func phaseTaskInterrupts(src *source, rec *Record) {
	if src.interruptFound {
		return
	}
	for _, task := range src.state.Tasks {
		if len(task.Interrupts) == 0 {
			continue
		}
		src.interruptFound = true
		entry := task.Interrupts[0]

		value := sliceAt(entry, "value")
		if len(value) == 0 {
			return
		}
		first, ok := value[0].(map[string]any)
		if !ok {
			return
		}

		if request := mapAt(first, "action_request"); request != nil {
			if action := strAt(request, "action"); action != "" {
				rec.ActionKind = Kind(action)
			}
			args := mapAt(request, "args")
			if content := firstContent(args); content != "" {
				rec.ActionContent = content
			}
			if rec.ActionKind == KindSendCalendarInvite {
				rec.Calendar = calendarFromArgs(args)
			}
		}

		rec.Details.Config = mapAt(first, "config")
		if description := strAt(first, "description"); description != "" {
			rec.Details.Description = description
			if strings.EqualFold(string(rec.ActionKind), "question") && rec.ActionContent == "" {
				rec.ActionContent = strings.TrimSpace(description)
			}
			parsed := parseEmailFromDescription(description)
			fillUnknown(&rec.EmailSender, parsed.Sender)
			fillUnknown(&rec.EmailSubject, parsed.Subject)
			fillEmpty(&rec.EmailContent, parsed.Content)
		}
		return
	}
}

// phaseWrites mines both writes locations of the current state. Action kind
// from writes never overrides one taken from an interrupt.
func phaseWrites(src *source, rec *Record) {
	for _, writes := range writesLocations(src.state) {
		applyWrites(writes, rec)
	}
}

func writesLocations(state *langgraph.ThreadState) []map[string]any {
	var locations []map[string]any
	if w := mapAt(state.Metadata, "writes"); w != nil {
		locations = append(locations, w)
	}
	if w := mapAt(state.Values, "writes"); w != nil {
		locations = append(locations, w)
	}
	return locations
}

func applyWrites(writes map[string]any, rec *Record) {
	email := extractEmailInfo(writes)
	fillUnknown(&rec.EmailSender, email.Sender)
	fillUnknown(&rec.EmailSubject, email.Subject)
	fillEmpty(&rec.EmailContent, email.Content)
	fillEmpty(&rec.SendTime, email.SendTime)
	fillEmpty(&rec.EmailID, email.EmailID)

	if rec.ActionKind != KindUnknown {
		return
	}
	action := extractActionInfo(writes)
	if action.Kind != UnknownValue {
		rec.ActionKind = Kind(action.Kind)
	}
	fillEmpty(&rec.ActionContent, action.Content)
	if rec.Calendar.IsZero() && !action.Calendar.IsZero() {
		rec.Calendar = action.Calendar
	}
}

// phaseHistory walks historical states, newest first, for anything the
// current state could not supply.
func phaseHistory(src *source, rec *Record) {
	complete := rec.EmailSender != UnknownValue &&
		rec.EmailSubject != UnknownValue &&
		rec.EmailContent != "" &&
		rec.ActionKind != KindUnknown
	if complete || len(src.history) == 0 {
		return
	}
	for i := range src.history {
		state := &src.history[i]
		writes := mapAt(state.Metadata, "writes")
		if writes == nil {
			writes = mapAt(state.Values, "writes")
		}
		if writes == nil {
			continue
		}
		applyWrites(writes, rec)
	}
}

// phaseInference guesses the kind from whichever content survived when no
// source named one.
func phaseInference(_ *source, rec *Record) {
	if rec.ActionKind != KindUnknown {
		return
	}
	switch {
	case rec.EmailContent != "":
		rec.ActionKind = KindResponseEmailDraft
	case rec.Calendar.Title != "" || rec.Calendar.StartTime != "":
		rec.ActionKind = KindSendCalendarInvite
	case rec.ActionContent != "":
		rec.ActionKind = KindQuestion
	}
}

// phaseCleanup unescapes doubly-encoded whitespace, normalizes the kind and
// substitutes display defaults for email metadata that stayed unknown.
func phaseCleanup(_ *source, rec *Record) {
	rec.ActionContent = unescapeText(rec.ActionContent)
	rec.EmailContent = unescapeText(rec.EmailContent)
	rec.ActionKind = Normalize(string(rec.ActionKind))

	if rec.EmailContent != "" {
		if rec.EmailSubject == UnknownValue {
			rec.EmailSubject = "Email Draft"
		}
		if rec.EmailSender == UnknownValue {
			rec.EmailSender = "AI Assistant"
		}
	}
}

func unescapeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\u00a0`, " ")
	return s
}
