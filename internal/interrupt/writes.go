package interrupt

import (
	"encoding/json"
	"strings"
)

// Helpers for walking the untyped writes documents. Every accessor tolerates
// missing keys and wrong types by returning the zero value.

func mapAt(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func sliceAt(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	list, _ := m[key].([]any)
	return list
}

func strAt(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func asStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// firstContent picks the conventional content field out of tool-call args,
// preferring content over question over message.
func firstContent(args map[string]any) string {
	for _, key := range []string{"content", "question", "message"} {
		if s := strAt(args, key); s != "" {
			return s
		}
	}
	return ""
}

func calendarFromArgs(args map[string]any) CalendarInvite {
	return CalendarInvite{
		Title:     strAt(args, "title"),
		StartTime: strAt(args, "start_time"),
		EndTime:   strAt(args, "end_time"),
		Emails:    asStringSlice(args["emails"]),
	}
}

// toolCallsOf collects tool calls from a message in both shapes seen in the
// wild: a direct tool_calls list of {name, args} maps, and OpenAI-style
// additional_kwargs.tool_calls with JSON-encoded function arguments. The
// OpenAI shape is decoded into the same {name, args} form.
func toolCallsOf(message map[string]any) []map[string]any {
	var calls []map[string]any
	for _, raw := range sliceAt(message, "tool_calls") {
		if call, ok := raw.(map[string]any); ok && strAt(call, "name") != "" {
			calls = append(calls, call)
		}
	}
	kwargs := mapAt(message, "additional_kwargs")
	for _, raw := range sliceAt(kwargs, "tool_calls") {
		call, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fn := mapAt(call, "function")
		name := strAt(fn, "name")
		if name == "" {
			continue
		}
		decoded := map[string]any{"name": name}
		if rawArgs := strAt(fn, "arguments"); rawArgs != "" {
			var args map[string]any
			if err := json.Unmarshal([]byte(rawArgs), &args); err == nil {
				decoded["args"] = args
			}
		}
		calls = append(calls, decoded)
	}
	return calls
}

// emailInfo holds email fields recovered from a writes document.
type emailInfo struct {
	Sender   string
	Subject  string
	Content  string
	SendTime string
	EmailID  string
}

// extractEmailInfo scans a writes document for email metadata. Draft tool
// calls under rewrite and draft_response supply the body; the legacy
// __start__/triage_input/read_email shapes supply sender, subject and send
// time; a triage sub-object is the last resort for subject and sender.
func extractEmailInfo(writes map[string]any) emailInfo {
	info := emailInfo{Sender: UnknownValue, Subject: UnknownValue}
	if writes == nil {
		return info
	}
	info.EmailID = strAt(writes, "email_id")

	for _, section := range []string{"rewrite", "draft_response"} {
		for _, raw := range sliceAt(mapAt(writes, section), "messages") {
			message, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			for _, call := range toolCallsOf(message) {
				if strAt(call, "name") != string(KindResponseEmailDraft) {
					continue
				}
				if content := strAt(mapAt(call, "args"), "content"); content != "" && info.Content == "" {
					info.Content = content
				}
			}
		}
	}

	if email := mapAt(mapAt(writes, "__start__"), "email"); email != nil {
		if sender := strAt(email, "from_email"); sender != "" {
			info.Sender = sender
		}
		if subject := strAt(email, "subject"); subject != "" {
			info.Subject = subject
		}
		if content := strAt(email, "page_content"); content != "" && info.Content == "" {
			info.Content = content
		}
		if sendTime := strAt(email, "send_time"); sendTime != "" {
			info.SendTime = sendTime
		}
	}

	for _, section := range []string{"triage_input", "read_email"} {
		email := mapAt(mapAt(writes, section), "email")
		if email == nil {
			continue
		}
		if sender := strAt(email, "from_email"); sender != "" && info.Sender == UnknownValue {
			info.Sender = sender
		}
		if subject := strAt(email, "subject"); subject != "" && info.Subject == UnknownValue {
			info.Subject = subject
		}
		if content := strAt(email, "page_content"); content != "" && info.Content == "" {
			info.Content = content
		}
		if sendTime := strAt(email, "send_time"); sendTime != "" && info.SendTime == "" {
			info.SendTime = sendTime
		}
	}

	if triage := mapAt(mapAt(writes, "triage_input"), "triage"); triage != nil {
		if subject := strAt(triage, "email_subject"); subject != "" && info.Subject == UnknownValue {
			info.Subject = subject
		}
		if sender := strAt(triage, "email_sender"); sender != "" && info.Sender == UnknownValue {
			info.Sender = sender
		}
	}

	return info
}

// actionInfo holds the action classification recovered from a writes document.
type actionInfo struct {
	Kind     string
	Content  string
	Calendar CalendarInvite
}

// extractActionInfo scans a writes document for the action kind and content.
// Tool calls under rewrite win, then draft_response, then triage shapes and
// task results, then a generic key scan, then a question-mark heuristic over
// plain messages.
func extractActionInfo(writes map[string]any) actionInfo {
	info := actionInfo{Kind: UnknownValue}
	if writes == nil {
		return info
	}

	for _, section := range []string{"rewrite", "draft_response"} {
		if section == "draft_response" && info.Kind != UnknownValue {
			break
		}
		for _, raw := range sliceAt(mapAt(writes, section), "messages") {
			message, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			for _, call := range toolCallsOf(message) {
				info.Kind = strAt(call, "name")
				args := mapAt(call, "args")
				if content := firstContent(args); content != "" {
					info.Content = content
				}
				if info.Kind == string(KindSendCalendarInvite) {
					info.Calendar = calendarFromArgs(args)
				}
			}
		}
	}
	if info.Kind != UnknownValue {
		return info
	}

	for _, section := range []string{"__start__", "triage_input"} {
		triage := mapAt(mapAt(writes, section), "triage")
		if triage == nil {
			continue
		}
		if response := strAt(triage, "response"); response != "" && strings.ToLower(response) != "no" {
			info.Kind = response
		}
		if action := strAt(triage, "action"); action != "" {
			info.Kind = action
		}
		if content := firstContent(triage); content != "" {
			info.Content = content
		}
	}

	for _, raw := range sliceAt(writes, "tasks") {
		task, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		result := mapAt(task, "result")
		if result == nil {
			continue
		}
		if action := strAt(result, "action"); action != "" {
			info.Kind = action
		}
		if content := strAt(result, "content"); content != "" {
			info.Content = content
		}
		if triage := mapAt(result, "triage"); triage != nil {
			if response := strAt(triage, "response"); response != "" {
				info.Kind = response
			}
			if content := strAt(triage, "content"); content != "" {
				info.Content = content
			}
		}
	}
	if info.Kind != UnknownValue {
		return info
	}

	for key, value := range writes {
		switch strings.ToLower(key) {
		case "question", "notify", "responseemaildraft", "sendcalendarinvite":
			info.Kind = key
			if section, ok := value.(map[string]any); ok {
				info.Content = strAt(section, "content")
			} else if s, ok := value.(string); ok {
				info.Content = s
			}
		}
	}
	if info.Kind != UnknownValue {
		return info
	}

	for _, raw := range sliceAt(writes, "messages") {
		message, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		content := strAt(message, "content")
		if content == "" || info.Content != "" {
			continue
		}
		info.Content = content
		if strings.Contains(content, "?") {
			info.Kind = string(KindQuestion)
		}
	}

	return info
}
