// Package dateutil compiles user-friendly date patterns such as
// "DD/MM/YYYY HH:mm" into layouts for the timestamps shown in history
// listings.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when no format is configured.
const DefaultDateFormat = "YYYY-MM-DD HH:mm"

// tokens are tried longest first at every position. Matching is
// case-sensitive: MM is the month, mm the minute.
var tokens = []struct {
	pattern string
	layout  string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"datetime": "YYYY-MM-DD HH:mm",
	"european": "DD/MM/YYYY HH:mm",
	"us":       "MM/DD/YYYY HH:mm",
	"long":     "MMMM D, YYYY",
}

// Layout is a compiled date format.
type Layout struct {
	goLayout string
}

// Compile turns a preset name or a token pattern into a Layout.
// An empty format compiles DefaultDateFormat.
//
// Tokens: YYYY YY MMMM MMM MM M DD D HH mm ss. Text in square brackets is
// kept literally, so "[Day] D" renders as "Day 7". Any other character is
// copied as is.
func Compile(format string) (Layout, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	if len(format) > MaxDateFormatLength {
		return Layout{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if literal, ok := strings.CutPrefix(rest, "["); ok {
			inner, after, closed := strings.Cut(literal, "]")
			if !closed {
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(inner)
			rest = after
			continue
		}

		n := writeToken(&b, rest)
		if n == 0 {
			b.WriteByte(rest[0])
			n = 1
		}
		rest = rest[n:]
	}

	return Layout{goLayout: b.String()}, nil
}

// writeToken writes the layout of the token at the start of s and returns
// its length, or 0 when s does not start with a token.
func writeToken(b *strings.Builder, s string) int {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.pattern) {
			b.WriteString(t.layout)
			return len(t.pattern)
		}
	}
	return 0
}

// Format renders t.
func (l Layout) Format(t time.Time) string {
	return t.Format(l.goLayout)
}

// String returns the Go reference layout.
func (l Layout) String() string {
	return l.goLayout
}
