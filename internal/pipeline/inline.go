package pipeline

import (
	"regexp"
	"strings"
)

// escapable lists the characters a backslash can protect, in placeholder order.
const escapable = "*_`[]()#"

// Escaped characters are parked on Private Use Area runes while the rewrite
// passes run, then restored as bare characters. The placeholders cannot
// match any marker pattern, so an escaped marker always comes out literal.
const escapeBase = '\uE100'

// escapePattern matches a backslash followed by an escapable character.
var escapePattern = regexp.MustCompile("\\\\([*_`\\[\\]()#])")

// inlineRule is one find-and-replace pass of the inline formatter.
type inlineRule struct {
	name    string
	pattern *regexp.Regexp
	replace string
}

// inlineRules run in order, each over the previous pass's output.
// Bold runs before italic so ** and __ pairs are consumed first, and the
// stray-marker cleanup must stay last.
var inlineRules = []inlineRule{
	{"bold-italic", regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), "<strong><em>$1</em></strong>"},
	{"bold-star", regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>$1</strong>"},
	{"bold-underscore", regexp.MustCompile(`__(.+?)__`), "<strong>$1</strong>"},
	{"italic-star", regexp.MustCompile(`\*(.+?)\*`), "<em>$1</em>"},
	{"italic-underscore", regexp.MustCompile(`_(.+?)_`), "<em>$1</em>"},
	{"strikethrough", regexp.MustCompile(`~~(.+?)~~`), "<del>$1</del>"},
	{"code", regexp.MustCompile("`([^`]+)`"), "<code>$1</code>"},
	{"link", regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<a href="$2">$1</a>`},
	{"stray-star", regexp.MustCompile(`([^<>\w])\*([^<>\w])`), "${1}${2}"},
	{"stray-underscore", regexp.MustCompile(`([^<>\w])_([^<>\w])`), "${1}${2}"},
}

// FormatInline rewrites emphasis, strikethrough, code, link and escape
// syntax inside a single line into HTML fragments.
//
// The passes are lossy: unmatched single markers flanked by
// punctuation or spaces are dropped, and text is not HTML-escaped.
// Applying FormatInline twice may transform its own output again.
func FormatInline(text string) string {
	if text == "" {
		return ""
	}

	// Text that already holds a placeholder rune cannot be told apart from
	// parked escapes, so it gets the plain unescape instead.
	parked := !strings.ContainsFunc(text, isPlaceholder)
	if parked {
		text = protectEscapes(text)
	} else {
		text = escapePattern.ReplaceAllString(text, "$1")
	}

	for _, rule := range inlineRules {
		text = rule.pattern.ReplaceAllString(text, rule.replace)
	}

	if parked {
		text = restoreEscapes(text)
	}
	return text
}

func isPlaceholder(r rune) bool {
	idx := int(r - escapeBase)
	return idx >= 0 && idx < len(escapable)
}

// protectEscapes swaps each backslash-escaped character for its placeholder.
func protectEscapes(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	return escapePattern.ReplaceAllStringFunc(text, func(m string) string {
		idx := strings.IndexByte(escapable, m[1])
		return string(rune(escapeBase + idx))
	})
}

// restoreEscapes turns placeholders back into the characters they stand for.
func restoreEscapes(text string) string {
	return strings.Map(func(r rune) rune {
		if isPlaceholder(r) {
			return rune(escapable[r-escapeBase])
		}
		return r
	}, text)
}
