package pipeline

import "testing"

func TestFormatInline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"plain text unchanged", "plain text, nothing to do.", "plain text, nothing to do."},
		{"unicode text unchanged", "中文内容", "中文内容"},
		{"bold stars", "**bold**", "<strong>bold</strong>"},
		{"bold underscores", "__bold__", "<strong>bold</strong>"},
		{"italic stars", "*it*", "<em>it</em>"},
		{"italic underscores", "_it_", "<em>it</em>"},
		{"bold italic", "***both***", "<strong><em>both</em></strong>"},
		{"two italic spans", "*a* and *b*", "<em>a</em> and <em>b</em>"},
		{"two bold spans", "**a** and **b**", "<strong>a</strong> and <strong>b</strong>"},
		{"italic inside bold", "**bold *nested* text**", "<strong>bold <em>nested</em> text</strong>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"inline code", "run `go test` now", "run <code>go test</code> now"},
		{"link", "[site](https://example.com)", `<a href="https://example.com">site</a>`},
		{"mixed emphasis", "Some *italic* and **bold**.", "Some <em>italic</em> and <strong>bold</strong>."},
		{"unicode emphasis", "中文*强调*", "中文<em>强调</em>"},
		{"escaped stars stay literal", `\*not italic\*`, "*not italic*"},
		{"escaped underscores stay literal", `\_kept\_`, "_kept_"},
		{"escaped brackets stay literal", `\[x\](y)`, "[x](y)"},
		{"escaped hash", `\# not a heading`, "# not a heading"},
		{"escaped backtick", "\\`tick\\`", "`tick`"},
		{"lone star between digits kept", "3*4", "3*4"},
		{"lone underscore inside word kept", "snake_case", "snake_case"},
		{"stray star between punctuation dropped", "(*)", "()"},
		{"stray star between spaces dropped", "a * b", "a  b"},
		{"stray underscore between spaces dropped", "a _ b", "a  b"},
		{"emphasis runs before code", "`**x**`", "<code><strong>x</strong></code>"},
		{"four stars become italic star", "****", "<em>*</em>*"},
		{"placeholder rune in input kept", "\uE100 star", "\uE100 star"},
		{"placeholder rune disables parking", "\uE100 \\*x\\*", "\uE100 <em>x</em>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := FormatInline(tt.input)
			if got != tt.want {
				t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInlineRules_CleanupRunsLast(t *testing.T) {
	t.Parallel()

	n := len(inlineRules)
	if inlineRules[n-2].name != "stray-star" || inlineRules[n-1].name != "stray-underscore" {
		t.Errorf("last rules = %q, %q; stray-marker cleanup must run last",
			inlineRules[n-2].name, inlineRules[n-1].name)
	}
}

func TestRestoreEscapes_LeavesOtherRunesAlone(t *testing.T) {
	t.Parallel()

	in := "abc" + string(rune(escapeBase+len(escapable))) + "中"
	if got := restoreEscapes(in); got != in {
		t.Errorf("restoreEscapes(%q) = %q, want unchanged", in, got)
	}
}
