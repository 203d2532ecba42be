package core

// convert.go holds the string-level conversions used while reading and
// normalizing CSV data:
//   - Header cleanup (BOM, Excel ="..." wrappers, stray quotes)
//   - Currency symbols and thousand separators in numbers
//   - Timestamps in an ordered list of layouts

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// errNoLayout is returned by parseTimestamp when no layout matches.
var errNoLayout = errors.New("does not match any timestamp format")

// CleanHeader removes common CSV artifacts from a header name:
//   - Byte order marks and surrounding whitespace
//   - Excel formula prefix (="...")
//   - Surrounding quotes
func CleanHeader(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// cleanNumeric strips currency symbols and thousands separators and turns
// accounting negatives "(12.50)" into "-12.50". It reports false, and returns
// s unchanged, when the result is still not a number.
func cleanNumeric(s string) (string, bool) {
	v := strings.TrimSpace(s)

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		isNegative = true
		v = strings.TrimSpace(v[1 : len(v)-1])
	}

	v = strings.ReplaceAll(v, "$", "")
	v = strings.ReplaceAll(v, "\u20ac", "") // Euro
	v = strings.ReplaceAll(v, "\u00a3", "") // Pound
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)

	if isNegative {
		v = "-" + v
	}

	if !numericRegex.MatchString(v) {
		return s, false
	}
	return v, true
}

// parseTimestamp tries each layout in order, reading values without an
// offset in loc. When nothing matches and the value ends in an alphabetic
// zone token (" EST", " UTC"), the token is dropped and the layouts are
// tried again.
func parseTimestamp(s string, layouts []string, loc *time.Location) (time.Time, error) {
	if t, ok := tryLayouts(s, layouts, loc); ok {
		return t, nil
	}
	if rest, ok := stripZoneToken(s); ok {
		if t, ok := tryLayouts(rest, layouts, loc); ok {
			return t, nil
		}
	}
	return time.Time{}, errNoLayout
}

func tryLayouts(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// stripZoneToken removes a trailing token of 1-5 letters separated by a space.
func stripZoneToken(s string) (string, bool) {
	i := strings.LastIndexByte(s, ' ')
	if i <= 0 {
		return s, false
	}
	token := s[i+1:]
	if len(token) == 0 || len(token) > 5 {
		return s, false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return s, false
		}
	}
	return strings.TrimSpace(s[:i]), true
}
