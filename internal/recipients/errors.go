package recipients

import (
	"fmt"

	"notifyadmin/internal/domain"
)

// UnreadableFileError means the upload isn't a spreadsheet we can parse.
type UnreadableFileError struct {
	Filename string
}

func (e UnreadableFileError) Error() string {
	return fmt.Sprintf("%s isn't a spreadsheet that Notify can read", e.Filename)
}

// MissingRowsError: the file has no data rows at all (header-only or empty).
// Takes precedence over any column mismatch.
type MissingRowsError struct {
	Required []string // every column the file would need
}

func (e MissingRowsError) Error() string { return "file has no data rows" }

// MissingRecipientColumnsError: the file lacks the column identifying the
// recipient (phone number, email address, or an address field).
type MissingRecipientColumnsError struct {
	Missing []string
	Present []string // columns the file actually has, verbatim
}

func (e MissingRecipientColumnsError) Error() string {
	return fmt.Sprintf("file is missing recipient columns %v", e.Missing)
}

// MissingPlaceholderColumnsError: the recipient column is there but one or
// more template placeholders have no matching column.
type MissingPlaceholderColumnsError struct {
	Missing []string
}

func (e MissingPlaceholderColumnsError) Error() string {
	return fmt.Sprintf("file is missing placeholder columns %v", e.Missing)
}

// TooManyRowsError is independent of per-row errors.
type TooManyRowsError struct {
	Max    int
	Actual int
}

func (e TooManyRowsError) Error() string {
	return fmt.Sprintf("file has %d rows, maximum is %d", e.Actual, e.Max)
}

// RowValidationError aggregates the per-row outcomes: rows with required
// cells empty and rows whose recipient fails format validation. Individual
// rows keep their own errors; this is the file-level verdict.
type RowValidationError struct {
	Type            domain.TemplateType
	MissingDataRows int
	BadRecipients   int
}

func (e RowValidationError) Error() string {
	return fmt.Sprintf("%d rows missing data, %d bad recipients", e.MissingDataRows, e.BadRecipients)
}

// TrialModeError: the service is in trial mode and at least one recipient is
// not a team member.
type TrialModeError struct {
	Type domain.TemplateType
}

func (e TrialModeError) Error() string {
	return "trial mode services can only send to team members"
}

// DailyLimitError: sending the whole file would exceed today's remaining
// allowance.
type DailyLimitError struct {
	Type      domain.TemplateType
	FileName  string
	Limit     int
	Requested int // already requested today
	InFile    int
}

func (e DailyLimitError) Error() string {
	return fmt.Sprintf("file of %d exceeds remaining daily allowance %d", e.InFile, e.Limit-e.Requested)
}

// Remaining is how many messages the service can still send today.
func (e DailyLimitError) Remaining() int {
	if r := e.Limit - e.Requested; r > 0 {
		return r
	}
	return 0
}
