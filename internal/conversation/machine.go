package conversation

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/resume"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/state"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
)

// Submitter delivers a finished resume command.
type Submitter interface {
	Submit(ctx context.Context, threadID string, cmd *resume.Command) error
}

// Reply is what the machine wants said back to the operator. The transport
// decides how; EditOrigin asks it to amend the message that carried the
// pressed button instead of sending a fresh one.
type Reply struct {
	Text       string
	HTML       bool
	EditOrigin bool
}

// Empty reports whether there is nothing to say.
func (r Reply) Empty() bool {
	return r.Text == ""
}

// Machine drives the operator conversation: button decisions, free-text
// answers and the guided calendar edit. State lives in the manager, so a
// restart resumes mid-flow.
type Machine struct {
	manager   *state.Manager
	submitter Submitter
}

func NewMachine(manager *state.Manager, submitter Submitter) *Machine {
	return &Machine{manager: manager, submitter: submitter}
}

const expiredText = "This interrupt is no longer active or has expired."

// HandleCallback processes an inline button press. action and threadID come
// from ParseCallbackData; originText is the text of the message the button
// was attached to.
func (m *Machine) HandleCallback(ctx context.Context, action, threadID, originText string) (Reply, error) {
	entry, ok := m.manager.Get(threadID)
	if !ok {
		return Reply{Text: expiredText, EditOrigin: true}, nil
	}
	rec := entry.Data

	switch action {
	case "ignore":
		return m.submitDecision(ctx, rec, interrupt.ResponseIgnore, "", originText,
			"✅ Ignored successfully", "❌ Failed to ignore. Please try again.")

	case "accept":
		return m.submitDecision(ctx, rec, interrupt.ResponseAccept, "", originText,
			"✅ Approved successfully", "❌ Failed to approve. Please try again.")

	case "respond":
		if err := m.armSession(ctx, state.AwaitingText{ThreadID: threadID, Type: interrupt.ResponseResponse}, threadID); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text:       originText + "\n\n<b>✏️ Please type your response:</b>",
			HTML:       true,
			EditOrigin: true,
		}, nil

	case "edit":
		if err := m.armSession(ctx, state.AwaitingText{ThreadID: threadID, Type: interrupt.ResponseEdit}, threadID); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text:       originText + "\n\n<b>✏️ Please provide your edited version:</b>",
			HTML:       true,
			EditOrigin: true,
		}, nil

	case "edit_calendar":
		if rec.Calendar.IsZero() {
			return Reply{
				Text:       originText + "\n\n<b>❌ Error: Calendar data is missing or invalid.</b>",
				HTML:       true,
				EditOrigin: true,
			}, nil
		}
		if err := m.armSession(ctx, state.CalendarEdit{
			ThreadID: threadID,
			Step:     state.StepTitle,
			Draft:    rec.Calendar,
		}, threadID); err != nil {
			return Reply{}, err
		}
		title := rec.Calendar.Title
		if title == "" {
			title = "No title"
		}
		return Reply{
			Text: fmt.Sprintf("%s\n\n<b>Step 1/3: Edit Meeting Title</b>\n\n"+
				"Current title: <i>%s</i>\n\n"+
				"Please enter the new meeting title or type <code>/keep</code> to keep the current title:",
				originText, html.EscapeString(title)),
			HTML:       true,
			EditOrigin: true,
		}, nil
	}

	slog.Warn("unrecognized callback action", "action", action, "thread_id", threadID)
	return Reply{}, nil
}

// armSession starts a response flow: the session records where the next
// message goes and the stored interrupt moves to awaiting_response.
func (m *Machine) armSession(ctx context.Context, s state.Session, threadID string) error {
	if err := m.manager.SetSession(ctx, s); err != nil {
		return err
	}
	if err := m.manager.SetStatus(ctx, threadID, state.StatusAwaitingResponse); err != nil {
		slog.Warn("could not mark interrupt awaiting response", "thread_id", threadID, "error", err)
	}
	return nil
}

// HandleMessage processes a free-text message according to the current
// session. An empty reply means the message was not part of any flow.
func (m *Machine) HandleMessage(ctx context.Context, text string) (Reply, error) {
	switch session := m.manager.Session().(type) {
	case state.AwaitingText:
		return m.handleAwaitedText(ctx, session, text)
	case state.CalendarEdit:
		return m.handleCalendarStep(ctx, session, text)
	}
	return Reply{}, nil
}

func (m *Machine) handleAwaitedText(ctx context.Context, session state.AwaitingText, text string) (Reply, error) {
	if err := m.manager.SetSession(ctx, state.Idle{}); err != nil {
		return Reply{}, err
	}
	entry, ok := m.manager.Get(session.ThreadID)
	if !ok {
		return Reply{Text: expiredText}, nil
	}

	success := "✅ Response sent successfully"
	failure := "❌ Failed to send response to LangGraph. Please try again."
	if session.Type == interrupt.ResponseEdit {
		success = "✅ Edit submitted successfully"
	}
	reply, err := m.submitDecision(ctx, entry.Data, session.Type, text, "", success, failure)
	if err != nil {
		return reply, err
	}
	return Reply{
		Text: fmt.Sprintf("<b>%s</b>\n\nYour response:\n%s", success, html.EscapeString(text)),
		HTML: true,
	}, nil
}

// submitDecision builds, validates and delivers one decision, then moves the
// stored status. Validation failures and submission failures both surface as
// operator-facing text; the error travels alongside for logging.
func (m *Machine) submitDecision(ctx context.Context, rec *interrupt.Record, rt interrupt.ResponseType,
	content, originText, successText, failureText string) (Reply, error) {

	editOrigin := originText != ""
	cmd, err := resume.Build(resume.Request{
		ThreadID:    rec.ThreadID,
		Kind:        rec.ActionKind,
		Type:        rt,
		Content:     content,
		AssistantID: rec.AssistantID,
	})
	if err != nil {
		return Reply{
			Text:       joinOrigin(originText, "❌ "+cerr.UserMessage(err)),
			EditOrigin: editOrigin,
		}, err
	}

	if err := m.submitter.Submit(ctx, rec.ThreadID, cmd); err != nil {
		return Reply{
			Text:       joinOrigin(originText, failureText),
			EditOrigin: editOrigin,
		}, err
	}

	if err := m.manager.SetStatus(ctx, rec.ThreadID, state.StatusCompleted); err != nil {
		slog.Warn("could not mark interrupt completed", "thread_id", rec.ThreadID, "error", err)
	}
	reply := Reply{Text: joinOrigin(originText, successText), EditOrigin: editOrigin}
	if editOrigin {
		reply.Text = joinOrigin(originText, "<b>"+successText+"</b>")
		reply.HTML = true
	}
	return reply, nil
}

func joinOrigin(originText, text string) string {
	if originText == "" {
		return text
	}
	return originText + "\n\n" + text
}

func (m *Machine) handleCalendarStep(ctx context.Context, session state.CalendarEdit, text string) (Reply, error) {
	entry, ok := m.manager.Get(session.ThreadID)
	if !ok {
		if err := m.manager.SetSession(ctx, state.Idle{}); err != nil {
			return Reply{}, err
		}
		return Reply{Text: expiredText}, nil
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "/cancel" {
		if err := m.manager.SetSession(ctx, state.Idle{}); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "Calendar editing cancelled."}, nil
	}
	keep := lower == "/keep"

	switch session.Step {
	case state.StepTitle:
		if !keep {
			session.Draft.Title = text
		}
		session.Step = state.StepDatetime
		if err := m.manager.SetSession(ctx, session); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text: fmt.Sprintf("<b>Step 2/3: Edit Date and Time</b>\n\n"+
				"Current start: <i>%s</i>\n"+
				"Current end: <i>%s</i>\n\n"+
				"Please enter the new date and time in this format:\n"+
				"<code>START_TIME | END_TIME</code>\n\n"+
				"Example: <code>2024-04-16T14:00:00 | 2024-04-16T15:00:00</code>\n\n"+
				"Or type <code>/keep</code> to keep the current date/time.",
				html.EscapeString(session.Draft.StartTime), html.EscapeString(session.Draft.EndTime)),
			HTML: true,
		}, nil

	case state.StepDatetime:
		if !keep {
			start, end, reply := parseDatetimeInput(text)
			if !reply.Empty() {
				return reply, cerr.NewMalformedOperatorInput("calendar datetime input rejected", nil)
			}
			session.Draft.StartTime = start
			session.Draft.EndTime = end
		}
		session.Step = state.StepEmails
		if err := m.manager.SetSession(ctx, session); err != nil {
			return Reply{}, err
		}
		display := "None"
		if len(session.Draft.Emails) > 0 {
			display = "• " + strings.Join(session.Draft.Emails, "\n• ")
		}
		return Reply{
			Text: fmt.Sprintf("<b>Step 3/3: Edit Attendees</b>\n\n"+
				"Current attendees:\n%s\n\n"+
				"Please enter email addresses separated by commas, or type <code>/keep</code> to keep the current attendees:",
				html.EscapeString(display)),
			HTML: true,
		}, nil

	case state.StepEmails:
		if !keep {
			emails, invalid := parseEmailsInput(text)
			if len(invalid) > 0 {
				return Reply{
					Text: fmt.Sprintf("❌ Invalid email address(es): %s\n\n"+
						"Please enter valid email addresses separated by commas:",
						strings.Join(invalid, ", ")),
				}, cerr.NewMalformedOperatorInput(
					fmt.Sprintf("invalid attendee address(es): %s", strings.Join(invalid, ", ")), nil)
			}
			session.Draft.Emails = emails
		}
		if err := m.manager.SetSession(ctx, state.Idle{}); err != nil {
			return Reply{}, err
		}
		return m.submitCalendarEdit(ctx, entry.Data, session.Draft)
	}

	if err := m.manager.SetSession(ctx, state.Idle{}); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "❌ Unknown calendar editing step. Please try again."},
		cerr.NewOrphanedSession(fmt.Sprintf("calendar edit at unknown step %q", session.Step))
}

func (m *Machine) submitCalendarEdit(ctx context.Context, rec *interrupt.Record, draft interrupt.CalendarInvite) (Reply, error) {
	encoded, err := resume.EncodeCalendarInvite(draft)
	if err != nil {
		return Reply{Text: "❌ Failed to submit calendar changes. Please try again."}, err
	}
	cmd, err := resume.Build(resume.Request{
		ThreadID:    rec.ThreadID,
		Kind:        rec.ActionKind,
		Type:        interrupt.ResponseEdit,
		Content:     encoded,
		AssistantID: rec.AssistantID,
	})
	if err != nil {
		return Reply{Text: "❌ " + cerr.UserMessage(err)}, err
	}
	if err := m.submitter.Submit(ctx, rec.ThreadID, cmd); err != nil {
		return Reply{Text: "❌ Failed to submit calendar changes. Please try again."}, err
	}
	if err := m.manager.SetStatus(ctx, rec.ThreadID, state.StatusCompleted); err != nil {
		slog.Warn("could not mark interrupt completed", "thread_id", rec.ThreadID, "error", err)
	}

	return Reply{
		Text: fmt.Sprintf("<b>Calendar Editing Complete!</b>\n\n"+
			"Title: %s\n"+
			"Start: %s\n"+
			"End: %s\n"+
			"Attendees: %s\n\n"+
			"✅ Calendar changes submitted successfully!",
			html.EscapeString(draft.Title),
			html.EscapeString(draft.StartTime),
			html.EscapeString(draft.EndTime),
			html.EscapeString(strings.Join(draft.Emails, ", "))),
		HTML: true,
	}, nil
}

// parseDatetimeInput validates the "start | end" form. A non-empty reply
// means the input was rejected and the step must not advance.
func parseDatetimeInput(text string) (start, end string, reply Reply) {
	parts := strings.Split(text, "|")
	if len(parts) != 2 {
		return "", "", Reply{
			Text: "❌ Please provide both start and end times separated by |.\n" +
				"Example: 2024-04-16T14:00:00 | 2024-04-16T15:00:00\n\n" +
				"Please try again:",
		}
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])

	startAt, err1 := parseISODatetime(start)
	endAt, err2 := parseISODatetime(end)
	if err1 != nil || err2 != nil {
		return "", "", Reply{
			Text: "❌ Invalid date/time format. Please use ISO format: YYYY-MM-DDThh:mm:ss\n\n" +
				"Please try again:",
		}
	}
	if !endAt.After(startAt) {
		return "", "", Reply{
			Text: "❌ End time must be after start time.\n\nPlease try again:",
		}
	}
	return start, end, Reply{}
}

func parseISODatetime(s string) (time.Time, error) {
	normalized := strings.Replace(s, "Z", "+00:00", 1)
	var lastErr error
	for _, layout := range []string{"2006-01-02T15:04:05-07:00", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseEmailsInput splits a comma-separated attendee list. An address must
// contain both "@" and "." to count as valid.
func parseEmailsInput(text string) (valid, invalid []string) {
	for _, raw := range strings.Split(text, ",") {
		email := strings.TrimSpace(raw)
		if email == "" {
			continue
		}
		if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			invalid = append(invalid, email)
			continue
		}
		valid = append(valid, email)
	}
	return valid, invalid
}
