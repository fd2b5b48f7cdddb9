package notify

import (
	"fmt"
	"regexp"
	"strings"

	"notifyadmin/internal/domain"
)

// SubmitError is the (heading, detail) pair shown when the remote API
// rejects a send.
type SubmitError struct {
	Heading string
	Detail  string
}

var sendLimitPattern = regexp.MustCompile(`Exceeded send limits \((\d+)\)`)

// TranslateSubmitError maps the remote API's free-text rejection message to
// user-facing copy. The matching is substring-based because the API doesn't
// return structured codes; it is isolated here so the cases stay tested in
// one place. The second return is false for unrecognised messages, which
// callers should log loudly before showing the generic pair.
func TranslateSubmitError(t domain.TemplateType, err *APIError) (SubmitError, bool) {
	msg := err.Message
	switch {
	case strings.Contains(msg, "Can’t send to this recipient when service is in trial mode"),
		strings.Contains(msg, "Can't send to this recipient when service is in trial mode"):
		return SubmitError{
			Heading: trialModeHeading(t),
			Detail:  "In trial mode you can only send to yourself and members of your team",
		}, true

	case strings.Contains(msg, "character count greater than the limit"):
		return SubmitError{
			Heading: "Message too long",
			Detail:  "Text messages can’t be longer than 459 characters.",
		}, true

	case sendLimitPattern.MatchString(msg):
		limit := sendLimitPattern.FindStringSubmatch(msg)[1]
		return SubmitError{
			Heading: "Daily limit reached",
			Detail:  fmt.Sprintf("You can only send %s messages per day in trial mode.", limit),
		}, true
	}

	return SubmitError{
		Heading: "Sorry, we couldn’t send your message",
		Detail:  "Try again later.",
	}, false
}

func trialModeHeading(t domain.TemplateType) string {
	if t == domain.TypeEmail {
		return "You can’t send to this email address"
	}
	return "You can’t send to this phone number"
}
