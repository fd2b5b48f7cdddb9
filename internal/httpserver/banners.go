package httpserver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"notifyadmin/internal/domain"
	"notifyadmin/internal/recipients"
)

// Banner is the red error box shown at the top of the check page. Heading and
// Detail are finished copy; templates render them verbatim.
type Banner struct {
	Heading string `json:"heading"`
	Detail  string `json:"detail,omitempty"`
}

// bannerFor turns a file verdict into its user-facing copy. Every verdict the
// table can produce has a case here.
func bannerFor(err error, t domain.Template) *Banner {
	switch e := err.(type) {
	case recipients.UnreadableFileError:
		return &Banner{
			Heading: fmt.Sprintf("%s isn’t a spreadsheet that Notify can read", e.Filename),
			Detail:  "Try using a different file format.",
		}

	case recipients.MissingRowsError:
		required := append([]string(nil), e.Required...)
		sort.Strings(required)
		detail := "It needs at least one row of data."
		if len(required) == 1 {
			detail = fmt.Sprintf("It needs at least one row of data, and a column called %s.", quoteJoin(required))
		} else if len(required) > 1 {
			detail = fmt.Sprintf("It needs at least one row of data, and columns called %s.", quoteJoin(required))
		}
		return &Banner{Heading: "Your file is missing some rows", Detail: detail}

	case recipients.MissingRecipientColumnsError:
		heading := fmt.Sprintf("Your file needs a column called %s", quoteJoin(e.Missing))
		if len(e.Missing) > 1 {
			heading = fmt.Sprintf("Your file needs columns called %s", quoteJoin(e.Missing))
		}
		detail := "Right now it has no columns."
		if len(e.Present) > 0 {
			detail = fmt.Sprintf("Right now it has columns called %s.", quoteJoin(e.Present))
		}
		return &Banner{Heading: heading, Detail: detail}

	case recipients.MissingPlaceholderColumnsError:
		detail := fmt.Sprintf("Your file is missing a column called %s.", quoteJoin(e.Missing))
		if len(e.Missing) > 1 {
			detail = fmt.Sprintf("Your file is missing columns called %s.", quoteJoin(e.Missing))
		}
		return &Banner{
			Heading: "The columns in your file need to match the double brackets in your template",
			Detail:  detail,
		}

	case recipients.TooManyRowsError:
		return &Banner{
			Heading: "Your file has too many rows",
			Detail: fmt.Sprintf("Notify can process up to %s rows at once. Your file has %s rows.",
				formatCount(e.Max), formatCount(e.Actual)),
		}

	case recipients.RowValidationError:
		var parts []string
		if e.MissingDataRows > 0 {
			parts = append(parts, fmt.Sprintf("You need to enter missing data in %s.",
				pluralize(e.MissingDataRows, "row", "rows")))
		}
		if e.BadRecipients > 0 {
			parts = append(parts, fmt.Sprintf("You need to fix %s.",
				pluralize(e.BadRecipients, recipientNoun(e.Type), recipientNounPlural(e.Type))))
		}
		return &Banner{Heading: "There is a problem with your data", Detail: strings.Join(parts, " ")}

	case recipients.TrialModeError:
		return &Banner{
			Heading: trialModeHeading(e.Type),
			Detail:  "In trial mode you can only send to yourself and members of your team",
		}

	case recipients.DailyLimitError:
		contains := fmt.Sprintf("‘%s’ contains %s.", e.FileName,
			pluralize(e.InFile, recipientNoun(e.Type), recipientNounPlural(e.Type)))
		detail := fmt.Sprintf("%s You can only send %s messages per day.", contains, formatCount(e.Limit))
		if e.Requested > 0 {
			detail = fmt.Sprintf("You can still send %s messages today, but %s",
				formatCount(e.Remaining()), contains)
		}
		return &Banner{Heading: "Too many recipients", Detail: detail}
	}

	return &Banner{Heading: "There is a problem with your file"}
}

func trialModeHeading(t domain.TemplateType) string {
	switch t {
	case domain.TypeEmail:
		return "You can’t send to this email address"
	case domain.TypeLetter:
		return "You can’t send to this address"
	}
	return "You can’t send to this phone number"
}

func recipientNoun(t domain.TemplateType) string {
	switch t {
	case domain.TypeEmail:
		return "email address"
	case domain.TypeLetter:
		return "address"
	}
	return "phone number"
}

func recipientNounPlural(t domain.TemplateType) string {
	switch t {
	case domain.TypeEmail:
		return "email addresses"
	case domain.TypeLetter:
		return "addresses"
	}
	return "phone numbers"
}

// sendingDisabledMessage is shown when the service lacks the sending
// permission for the template's channel.
func sendingDisabledMessage(t domain.TemplateType) string {
	switch t {
	case domain.TypeEmail:
		return "Sending emails has been disabled for your service."
	case domain.TypeLetter:
		return "Sending letters has been disabled for your service."
	}
	return "Sending text messages has been disabled for your service."
}

// quoteJoin renders column names as ‘a’, ‘b’ and ‘c’.
func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "‘" + n + "’"
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " and " + quoted[1]
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " and " + quoted[len(quoted)-1]
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return formatCount(n) + " " + plural
}

// formatCount renders 11111 as "11,111".
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
