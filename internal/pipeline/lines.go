package pipeline

import (
	"regexp"
	"strings"
)

// crlfOrCR matches Windows and classic Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// SplitLines turns raw text into the immutable line sequence the assembler
// walks. Line endings are normalized to \n before splitting, so text pasted
// from Windows editors does not leave a trailing \r on every line.
func SplitLines(text string) []string {
	return strings.Split(normalizeLineEndings(text), "\n")
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
