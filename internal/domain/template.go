package domain

import (
	"regexp"
	"strings"
	"unicode"
)

var placeholderPattern = regexp.MustCompile(`\(\(([^()]+)\)\)`)

// NormalizeColumn maps a column or placeholder name onto its canonical key:
// lowercased with whitespace, underscores and hyphens removed. "Phone Number",
// "phone_number" and "phonenumber" all match.
func NormalizeColumn(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholders extracts ((name)) markers from template content, in order of
// first appearance, de-duplicated by normalized key. Names are returned
// trimmed but otherwise as written.
func (t Template) Placeholders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.Content+"\n"+t.Subject, -1) {
		name := strings.TrimSpace(m[1])
		key := NormalizeColumn(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Render substitutes placeholder values into the template content. Values are
// looked up by normalized key so "phone number" fills ((phone_number)).
func (t Template) Render(values map[string]string) string {
	return substitute(t.Content, values)
}

// RenderSubject substitutes placeholder values into the email subject line.
func (t Template) RenderSubject(values map[string]string) string {
	return substitute(t.Subject, values)
}

func substitute(s string, values map[string]string) string {
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		normalized[NormalizeColumn(k)] = v
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		if v, ok := normalized[NormalizeColumn(name)]; ok {
			return v
		}
		return m
	})
}

// Letter addresses are six lines plus a postcode; lines 3 to 6 may be left
// blank.
var (
	letterAddressColumns = []string{
		"address line 1",
		"address line 2",
		"address line 3",
		"address line 4",
		"address line 5",
		"address line 6",
		"postcode",
	}
	optionalAddressColumns = map[string]bool{
		"addressline3": true,
		"addressline4": true,
		"addressline5": true,
		"addressline6": true,
	}
)

// RecipientColumns returns the columns that identify the recipient for the
// template type: the phone number or email address column, or the full
// address block for letters.
func (t Template) RecipientColumns() []string {
	switch t.Type {
	case TypeSMS:
		return []string{"phone number"}
	case TypeEmail:
		return []string{"email address"}
	case TypeLetter:
		cols := make([]string, len(letterAddressColumns))
		copy(cols, letterAddressColumns)
		return cols
	}
	return nil
}

// RequiredColumns is the set an uploaded file must provide: the recipient
// columns plus every placeholder, minus the optional address lines.
func (t Template) RequiredColumns() []string {
	var out []string
	for _, c := range t.RecipientColumns() {
		if OptionalColumn(t.Type, c) {
			continue
		}
		out = append(out, c)
	}
	seen := make(map[string]bool)
	for _, c := range out {
		seen[NormalizeColumn(c)] = true
	}
	for _, p := range t.Placeholders() {
		if key := NormalizeColumn(p); !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}

// OptionalColumn reports whether a column may be empty or absent: address
// lines 3 to 6 on letter templates.
func OptionalColumn(t TemplateType, column string) bool {
	return t == TypeLetter && optionalAddressColumns[NormalizeColumn(column)]
}

// WizardFields lists the values collected one per step in the send wizard:
// the address block first for letters, then each placeholder.
func (t Template) WizardFields() []string {
	var fields []string
	if t.Type == TypeLetter {
		fields = append(fields, letterAddressColumns...)
	}
	seen := make(map[string]bool)
	for _, f := range fields {
		seen[NormalizeColumn(f)] = true
	}
	for _, p := range t.Placeholders() {
		if key := NormalizeColumn(p); !seen[key] {
			seen[key] = true
			fields = append(fields, p)
		}
	}
	return fields
}
