package recipients

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	errBadCharacters  = errors.New("must not contain letters or symbols")
	errNotUKMobile    = errors.New("not a UK mobile number")
	errNotEnoughDigit = errors.New("not enough digits")
	errTooManyDigits  = errors.New("too many digits")
	errBadEmail       = errors.New("not a valid email address")
)

// NormalizePhone strips formatting characters, leaving an optional leading
// "+" and digits.
func NormalizePhone(p string) string {
	p = strings.TrimSpace(p)
	var b strings.Builder
	for i, r := range p {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidatePhone returns the canonical +44... form of a UK mobile number, or
// a full international number when allowInternational is set.
func ValidatePhone(raw string, allowInternational bool) (string, error) {
	p := NormalizePhone(raw)
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "00") {
		p = p[2:]
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return "", errBadCharacters
		}
	}

	// domestic forms: 07..., 447..., bare 7...
	uk := ""
	switch {
	case strings.HasPrefix(p, "447"):
		uk = p[2:]
	case strings.HasPrefix(p, "07"):
		uk = p[1:]
	case strings.HasPrefix(p, "7"):
		uk = p
	}
	if uk != "" {
		if len(uk) < 10 {
			return "", errNotEnoughDigit
		}
		if len(uk) > 10 {
			if !allowInternational {
				return "", errTooManyDigits
			}
		} else {
			return "+44" + uk, nil
		}
	}

	if !allowInternational {
		return "", errNotUKMobile
	}
	if len(p) < 8 {
		return "", errNotEnoughDigit
	}
	if len(p) > 15 {
		return "", errTooManyDigits
	}
	return "+" + p, nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@([^\s@.]+\.)+[^\s@.]+$`)

func ValidateEmail(raw string) (string, error) {
	e := strings.TrimSpace(raw)
	if !emailPattern.MatchString(e) {
		return "", errBadEmail
	}
	return strings.ToLower(e), nil
}

const addressPunctuation = ` .,-/()&'!?:;@#+"` + "\n\r"

// DisallowedAddressCharacters returns the runes in an address field that the
// downstream print pipeline can't handle, deduplicated, in order of first
// appearance. Latin script letters and digits are allowed.
func DisallowedAddressCharacters(value string) []rune {
	var bad []rune
	seen := make(map[rune]bool)
	for _, r := range value {
		if unicode.IsDigit(r) || strings.ContainsRune(addressPunctuation, r) {
			continue
		}
		if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			continue
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		bad = append(bad, r)
	}
	return bad
}
