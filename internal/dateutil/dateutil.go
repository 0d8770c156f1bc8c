// Package dateutil formats the timestamps written into document properties
// and configuration blocks, and parses the W3CDTF dates of core.xml.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// ErrInvalidDate indicates a date value that cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// StampFormat renders a JST timestamp such as 2024-03-15T19:30:00+09:00.
const StampFormat = "YYYY-MM-DD[T]hh:mm:ss[+09:00]"

// W3CDTFFormat renders a UTC timestamp as written into core.xml.
const W3CDTFFormat = "YYYY-MM-DD[T]hh:mm:ss[Z]"

// JST is Japan standard time. It has no daylight saving.
var JST = time.FixedZone("JST", 9*60*60)

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"hh", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, hh, mm, ss
// Use brackets to escape literal text: [T] preserves "T" literally.
// Any non-token characters outside brackets are preserved as literals.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Format renders t with a user-friendly format.
func Format(format string, t time.Time) (string, error) {
	goFmt, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}

// Stamp renders t in JST with StampFormat.
func Stamp(t time.Time) string {
	s, err := Format(StampFormat, t.In(JST))
	if err != nil {
		panic(err) // StampFormat is a valid constant
	}
	return s
}

// W3CDTF renders t in UTC with W3CDTFFormat.
func W3CDTF(t time.Time) string {
	s, err := Format(W3CDTFFormat, t.UTC())
	if err != nil {
		panic(err) // W3CDTFFormat is a valid constant
	}
	return s
}

// w3cdtfLayouts are the W3CDTF profiles found in core.xml, most precise
// first.
var w3cdtfLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseW3CDTF parses a dcterms date. Values without a zone are UTC.
func ParseW3CDTF(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range w3cdtfLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}
