package interrupt

import "strings"

// parsedEmail is the result of reading email metadata out of a free-text
// interrupt description.
type parsedEmail struct {
	Sender  string
	Subject string
	Content string
}

// parseEmailFromDescription recovers email sender, subject and body from a
// formatted interrupt description. Descriptions with "From:" and "Subject:"
// header lines are parsed as a formatted email whose body starts after the
// first blank line. Headerless descriptions are treated as a bare draft body
// when they are long enough to plausibly be one, and never attributed to a
// sender or subject.
func parseEmailFromDescription(description string) parsedEmail {
	result := parsedEmail{Sender: UnknownValue, Subject: UnknownValue}
	if description == "" {
		return result
	}

	if strings.Contains(description, "From:") && strings.Contains(description, "Subject:") {
		lines := strings.Split(description, "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "From:") {
				result.Sender = strings.TrimSpace(line[len("From:"):])
				break
			}
		}
		for _, line := range lines {
			if strings.HasPrefix(line, "Subject:") {
				result.Subject = strings.TrimSpace(line[len("Subject:"):])
				break
			}
		}

		// The body starts after the first blank line following the headers.
		var contentLines []string
		inContent := false
		for _, line := range lines {
			if inContent {
				contentLines = append(contentLines, line)
			} else if strings.TrimSpace(line) == "" {
				inContent = true
			}
		}
		if len(contentLines) > 0 {
			result.Content = strings.TrimSpace(strings.Join(contentLines, "\n"))
		}
		return result
	}

	if len(description) > 20 && strings.Contains(description, "\n") {
		result.Content = strings.TrimSpace(description)
	}
	return result
}
