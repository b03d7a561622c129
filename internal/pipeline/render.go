package pipeline

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark/util"
)

// DefaultTitle is the document title used when none is given.
const DefaultTitle = "Document"

// Inline styles repeated on elements whose look must survive word
// processors that ignore parts of the stylesheet.
const (
	tableOpenTag = `<table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse; width: 100%; margin: 15px 0;">`
	headerStyle  = `background-color: #3b82f6; color: white; padding: 10px; text-align: left; font-weight: bold;`
	stripeStyle  = `background-color: #f9fafb;`
	cellStyle    = `padding: 10px; border: 1px solid #ddd;`
	quoteStyle   = `border-left: 4px solid #3b82f6; padding-left: 15px; margin: 10px 0; color: #666;`
	ruleTag      = `<hr style="border: none; border-top: 2px solid #ddd; margin: 20px 0;" />`
)

// Document is a complete, self-contained rendered document.
type Document struct {
	Title string
	Body  string // block markup only, as stored for later re-export
	HTML  string // full document: shell, inline stylesheet, body
}

// shellData feeds the document template.
type shellData struct {
	Title string
	Body  template.HTML
}

// Renderer maps blocks to markup and wraps them in the document shell.
// A Renderer holds no per-call state and is safe for concurrent use.
type Renderer struct {
	shell       *template.Template
	css         string
	cssInjector CSSInjector
	highlighter *codeHighlighter
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithHighlighting colors fenced code blocks that name a known language.
func WithHighlighting() RendererOption {
	return func(r *Renderer) {
		r.highlighter = newCodeHighlighter()
	}
}

// NewRenderer creates a Renderer from the shell template source and the
// theme stylesheet. Returns error if the template cannot be parsed.
func NewRenderer(shellTemplate, css string, opts ...RendererOption) (*Renderer, error) {
	tmpl, err := template.New("document").Parse(shellTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}

	r := &Renderer{
		shell:       tmpl,
		css:         css,
		cssInjector: &CSSInjection{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render produces the full document for blocks.
func (r *Renderer) Render(blocks []Block, title string) (Document, error) {
	return r.Wrap(r.RenderBody(blocks), title)
}

// RenderBody concatenates the markup of every block, in order.
func (r *Renderer) RenderBody(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		r.renderBlock(&sb, b)
	}
	return sb.String()
}

// Wrap places already rendered block markup in the document shell and
// injects the theme. An empty title falls back to DefaultTitle.
func (r *Renderer) Wrap(body, title string) (Document, error) {
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	// #nosec G203 -- body is markup produced by this package
	if err := r.shell.Execute(&buf, shellData{Title: title, Body: template.HTML(body)}); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrRender, err)
	}

	return Document{
		Title: title,
		Body:  body,
		HTML:  r.cssInjector.InjectCSS(buf.String(), r.css),
	}, nil
}

func (r *Renderer) renderBlock(sb *strings.Builder, b Block) {
	switch b := b.(type) {
	case Heading:
		fmt.Fprintf(sb, "<h%d>%s</h%d>", b.Level, b.Content, b.Level)

	case Paragraph:
		sb.WriteString("<p>" + b.Content + "</p>")

	case List:
		tag := "ul"
		if b.Ordered {
			tag = "ol"
		}
		sb.WriteString("<" + tag + ">")
		for _, item := range b.Items {
			sb.WriteString("<li>" + item.Content + "</li>")
		}
		sb.WriteString("</" + tag + ">")

	case CodeBlock:
		sb.WriteString("<pre><code>" + r.renderCode(b) + "</code></pre>")

	case Table:
		renderTable(sb, b)

	case BlockQuote:
		sb.WriteString(`<blockquote style="` + quoteStyle + `">` + b.Content + "</blockquote>")

	case Rule:
		sb.WriteString(ruleTag)
	}
}

// renderCode returns the inner markup of a code block: highlighted when
// enabled and the language is known, escaped verbatim text otherwise.
func (r *Renderer) renderCode(b CodeBlock) string {
	if r.highlighter != nil {
		if out, ok := r.highlighter.highlight(b.Language, b.Content); ok {
			return out
		}
	}
	return string(util.EscapeHTML([]byte(b.Content)))
}

// renderTable writes the header row then the data rows, shading rows with
// an even index.
func renderTable(sb *strings.Builder, t Table) {
	sb.WriteString(tableOpenTag)
	sb.WriteString("<thead><tr>")
	for _, h := range t.Headers {
		sb.WriteString(`<th style="` + headerStyle + `">` + h + "</th>")
	}
	sb.WriteString("</tr></thead><tbody>")
	for i, row := range t.Rows {
		if i%2 == 0 {
			sb.WriteString(`<tr style="` + stripeStyle + `">`)
		} else {
			sb.WriteString("<tr>")
		}
		for _, cell := range row {
			sb.WriteString(`<td style="` + cellStyle + `">` + cell + "</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
}
