package recipients

import (
	"strings"

	"notifyadmin/internal/domain"
)

const DefaultMaxRows = 50000

type Options struct {
	Template         domain.Template
	InternationalSMS bool
	MaxRows          int // 0 means DefaultMaxRows
}

// Row is one data row of the uploaded file. Index is the spreadsheet ordinal:
// the header is row 1, so the first data row displays as 2.
type Row struct {
	Index          int
	Cells          map[string][]string // normalized column key -> values; duplicate columns collate
	MissingColumns []string            // required columns empty in this row, display names
	RecipientError string              // empty when the recipient value is fine
}

func (r Row) OK() bool {
	return len(r.MissingColumns) == 0 && r.RecipientError == ""
}

// Get returns the first value under a column name.
func (r Row) Get(column string) string {
	vs := r.Cells[domain.NormalizeColumn(column)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Table is a parsed, validated recipient file.
type Table struct {
	Headers []string // non-empty header cells, verbatim, in file order
	Rows    []Row

	opts                Options
	missingRecipient    []string // required recipient columns absent from the header
	missingPlaceholders []string // placeholder columns absent from the header
}

// Policy is everything the aggregate verdict needs beyond the file itself.
type Policy struct {
	Service          domain.Service
	Team             []domain.TeamMember
	Stats            domain.DailyStats
	OriginalFileName string
}

// NewTable validates parsed records against the template's required columns.
// Row validation is independent per row; header problems are recorded but
// rows are still parsed so the preview can show the file contents.
func NewTable(records [][]string, opts Options) *Table {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	t := &Table{opts: opts}

	var header []string
	if len(records) > 0 {
		header = records[0]
		records = records[1:]
	}
	colKeys := make([]string, len(header))
	headerSet := make(map[string]bool)
	for i, h := range header {
		if h == "" {
			continue
		}
		t.Headers = append(t.Headers, h)
		colKeys[i] = domain.NormalizeColumn(h)
		headerSet[colKeys[i]] = true
	}

	tpl := opts.Template
	recipientCols := make(map[string]bool)
	for _, c := range tpl.RecipientColumns() {
		recipientCols[domain.NormalizeColumn(c)] = true
	}
	for _, c := range tpl.RequiredColumns() {
		if headerSet[domain.NormalizeColumn(c)] {
			continue
		}
		if recipientCols[domain.NormalizeColumn(c)] {
			t.missingRecipient = append(t.missingRecipient, c)
		} else {
			t.missingPlaceholders = append(t.missingPlaceholders, c)
		}
	}

	for i, rec := range records {
		row := Row{Index: i + 2, Cells: make(map[string][]string)}
		for j, cell := range rec {
			if j >= len(colKeys) || colKeys[j] == "" {
				continue
			}
			row.Cells[colKeys[j]] = append(row.Cells[colKeys[j]], cell)
		}
		t.validateRow(&row)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) validateRow(row *Row) {
	tpl := t.opts.Template
	for _, c := range tpl.RequiredColumns() {
		key := domain.NormalizeColumn(c)
		if !t.hasColumn(key) {
			continue // reported as a header error, not per row
		}
		if allEmpty(row.Cells[key]) && !domain.OptionalColumn(tpl.Type, c) {
			row.MissingColumns = append(row.MissingColumns, c)
		}
	}

	switch tpl.Type {
	case domain.TypeSMS:
		if v := row.Get("phone number"); v != "" {
			if _, err := ValidatePhone(v, t.opts.InternationalSMS); err != nil {
				row.RecipientError = capitalize(err.Error())
			}
		}
	case domain.TypeEmail:
		if v := row.Get("email address"); v != "" {
			if _, err := ValidateEmail(v); err != nil {
				row.RecipientError = capitalize(err.Error())
			}
		}
	case domain.TypeLetter:
		var bad []rune
		seen := make(map[rune]bool)
		for _, c := range tpl.RecipientColumns() {
			for _, v := range row.Cells[domain.NormalizeColumn(c)] {
				for _, r := range DisallowedAddressCharacters(v) {
					if !seen[r] {
						seen[r] = true
						bad = append(bad, r)
					}
				}
			}
		}
		if len(bad) > 0 {
			row.RecipientError = "Can’t include " + joinRunes(bad)
		}
	}
}

func (t *Table) hasColumn(key string) bool {
	for _, h := range t.Headers {
		if domain.NormalizeColumn(h) == key {
			return true
		}
	}
	return false
}

// HeaderError reports the single applicable header-level problem. Exactly one
// of the three messages applies at a time: missing rows beats a missing
// recipient column, which beats a placeholder mismatch.
func (t *Table) HeaderError() error {
	if len(t.Rows) == 0 {
		return MissingRowsError{Required: t.opts.Template.RequiredColumns()}
	}
	if len(t.missingRecipient) > 0 {
		return MissingRecipientColumnsError{
			Missing: append([]string(nil), t.missingRecipient...),
			Present: append([]string(nil), t.Headers...),
		}
	}
	if len(t.missingPlaceholders) > 0 {
		return MissingPlaceholderColumnsError{Missing: append([]string(nil), t.missingPlaceholders...)}
	}
	return nil
}

// RowErrorCounts returns how many rows are missing required data and how
// many have an invalid recipient. A row can count towards both.
func (t *Table) RowErrorCounts() (missingData, badRecipients int) {
	for _, r := range t.Rows {
		if len(r.MissingColumns) > 0 {
			missingData++
		}
		if r.RecipientError != "" {
			badRecipients++
		}
	}
	return missingData, badRecipients
}

func (t *Table) TooManyRows() bool {
	return len(t.Rows) > t.opts.MaxRows
}

// RecipientValue returns the raw recipient cell for a row (phone or email;
// letters have no single recipient value).
func (t *Table) RecipientValue(row Row) string {
	switch t.opts.Template.Type {
	case domain.TypeSMS:
		return row.Get("phone number")
	case domain.TypeEmail:
		return row.Get("email address")
	}
	return ""
}

// allowedForTrialMode reports whether every recipient is a team member's
// verified phone number or email address. Letters are never matched against
// the team so the check passes vacuously.
func (t *Table) allowedForTrialMode(team []domain.TeamMember) bool {
	tplType := t.opts.Template.Type
	if tplType == domain.TypeLetter {
		return true
	}
	allowed := make(map[string]bool)
	for _, m := range team {
		if m.MobileNumber != "" {
			if p, err := ValidatePhone(m.MobileNumber, true); err == nil {
				allowed[p] = true
			}
		}
		if m.EmailAddress != "" {
			allowed[strings.ToLower(m.EmailAddress)] = true
		}
	}
	for _, row := range t.Rows {
		v := t.RecipientValue(row)
		if v == "" {
			continue
		}
		switch tplType {
		case domain.TypeSMS:
			p, err := ValidatePhone(v, true)
			if err != nil || !allowed[p] {
				return false
			}
		case domain.TypeEmail:
			e, err := ValidateEmail(v)
			if err != nil || !allowed[e] {
				return false
			}
		}
	}
	return true
}

// Verdict classifies the whole file. nil means the file can be sent.
func (t *Table) Verdict(p Policy) error {
	if p.Service.TrialMode && !t.allowedForTrialMode(p.Team) {
		return TrialModeError{Type: t.opts.Template.Type}
	}
	if t.TooManyRows() {
		return TooManyRowsError{Max: t.opts.MaxRows, Actual: len(t.Rows)}
	}
	if err := t.HeaderError(); err != nil {
		return err
	}
	if missing, bad := t.RowErrorCounts(); missing > 0 || bad > 0 {
		return RowValidationError{Type: t.opts.Template.Type, MissingDataRows: missing, BadRecipients: bad}
	}
	if p.Service.MessageLimit > 0 && t.opts.Template.Type != domain.TypeLetter {
		requested := p.Stats.Requested(t.opts.Template.Type)
		if requested+len(t.Rows) > p.Service.MessageLimit {
			return DailyLimitError{
				Type:      t.opts.Template.Type,
				FileName:  p.OriginalFileName,
				Limit:     p.Service.MessageLimit,
				Requested: requested,
				InFile:    len(t.Rows),
			}
		}
	}
	return nil
}

// Preview holds at most n display rows; validation always ran over the full
// table.
type Preview struct {
	Headers   []string
	Rows      []Row
	Truncated bool
	TotalRows int
}

func (t *Table) Preview(n int) Preview {
	p := Preview{Headers: t.displayHeaders(), TotalRows: len(t.Rows)}
	if len(t.Rows) > n {
		p.Rows = t.Rows[:n]
		p.Truncated = true
	} else {
		p.Rows = t.Rows
	}
	return p
}

// displayHeaders collapses duplicate-named columns into one, keeping the
// first spelling.
func (t *Table) displayHeaders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range t.Headers {
		key := domain.NormalizeColumn(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// joinRunes renders "П, е, т or я".
func joinRunes(rs []rune) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return joinList(parts)
}

// joinList renders "a", "a and b", "a, b or c" in the style the check page
// uses for character lists.
func joinList(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " or " + parts[1]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}
