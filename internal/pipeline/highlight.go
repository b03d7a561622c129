package pipeline

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is the chroma palette used for fenced code with a language.
const highlightStyle = "github"

// codeHighlighter colors code with inline styles. Word processors drop
// class-based rules they cannot map, so classes are not used.
type codeHighlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func newCodeHighlighter() *codeHighlighter {
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	return &codeHighlighter{
		formatter: chromahtml.New(chromahtml.PreventSurroundingPre(true)),
		style:     style,
	}
}

// highlight returns colored markup for code, or false when the language is
// unknown or tokenizing fails. The caller then falls back to plain output.
func (h *codeHighlighter) highlight(language, code string) (string, bool) {
	if language == "" {
		return "", false
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}
