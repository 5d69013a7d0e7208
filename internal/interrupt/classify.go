package interrupt

import "strings"

// Kind is the action kind of an interrupt. After Normalize it is one of the
// closed set below, or the raw label when no alias matched (callers treat
// that as unknown with permissive response permissions).
type Kind string

const (
	KindQuestion           Kind = "Question"
	KindResponseEmailDraft Kind = "ResponseEmailDraft"
	KindNotify             Kind = "Notify"
	KindSendCalendarInvite Kind = "SendCalendarInvite"
	KindUnknown            Kind = "Unknown"
)

// ResponseType is an operator decision on an interrupt.
type ResponseType string

const (
	ResponseAccept   ResponseType = "accept"
	ResponseIgnore   ResponseType = "ignore"
	ResponseResponse ResponseType = "response"
	ResponseEdit     ResponseType = "edit"
)

// AllResponseTypes is the permissive fallback for unknown kinds.
var AllResponseTypes = []ResponseType{ResponseAccept, ResponseIgnore, ResponseResponse, ResponseEdit}

var allowedResponses = map[Kind][]ResponseType{
	KindQuestion:           {ResponseResponse, ResponseIgnore},
	KindResponseEmailDraft: {ResponseAccept, ResponseEdit, ResponseIgnore, ResponseResponse},
	KindNotify:             {ResponseResponse, ResponseIgnore},
	KindSendCalendarInvite: {ResponseAccept, ResponseEdit, ResponseIgnore, ResponseResponse},
}

var aliases = map[string]Kind{
	"question":           KindQuestion,
	"email":              KindResponseEmailDraft,
	"responseemaildraft": KindResponseEmailDraft,
	"emaildraft":         KindResponseEmailDraft,
	"notify":             KindNotify,
	"invite":             KindSendCalendarInvite,
	"calendar":           KindSendCalendarInvite,
	"sendcalendarinvite": KindSendCalendarInvite,
}

// Normalize maps a free-text action label onto the closed kind set, handling
// case variations and common aliases. Labels with no match are returned
// unchanged.
func Normalize(raw string) Kind {
	if raw == "" || raw == string(KindUnknown) {
		return KindUnknown
	}
	if _, ok := allowedResponses[Kind(raw)]; ok {
		return Kind(raw)
	}
	if kind, ok := aliases[strings.ToLower(raw)]; ok {
		return kind
	}
	return Kind(raw)
}

// AllowedResponses returns the response types permitted for the kind.
// Unknown kinds permit everything.
func (k Kind) AllowedResponses() []ResponseType {
	if allowed, ok := allowedResponses[Normalize(string(k))]; ok {
		return allowed
	}
	return AllResponseTypes
}

// Allows reports whether the response type is permitted for the kind.
func (k Kind) Allows(rt ResponseType) bool {
	for _, allowed := range k.AllowedResponses() {
		if allowed == rt {
			return true
		}
	}
	return false
}
