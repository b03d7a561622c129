package md2doc

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-md2doc/internal/assets"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.CSSInjector = (*pipeline.CSSInjection)(nil)
	_ Sink                 = FileSink{}
	_ Sink                 = WriterSink{}
	_ Sink                 = SinkFunc(nil)
)

// Converter runs the text-to-document pipeline.
// Create with NewConverter and use Convert for conversion. A Converter holds
// no per-call state and is safe for concurrent use.
type Converter struct {
	cfg      converterConfig
	renderer *pipeline.Renderer
	exporter *pipeline.Exporter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTitle, WithFilenamePrefix).
// Returns error if an option value is invalid or the embedded assets
// cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			title:  DefaultTitle,
			prefix: DefaultFilenamePrefix,
			now:    time.Now,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.prefix == "" {
		c.cfg.prefix = DefaultFilenamePrefix
	}
	if err := fileutil.ValidateFilename(c.cfg.prefix); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPrefix, c.cfg.prefix, err)
	}

	shell, err := assets.LoadDocumentTemplate()
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}
	css, err := assets.LoadTheme()
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}

	var rendererOpts []pipeline.RendererOption
	if c.cfg.highlight {
		rendererOpts = append(rendererOpts, pipeline.WithHighlighting())
	}
	c.renderer, err = pipeline.NewRenderer(shell, css, rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}

	c.exporter = pipeline.NewExporter(c.cfg.prefix, c.cfg.now)

	return c, nil
}

// Convert runs the full pipeline and returns the rendered document and its
// exported artifact. The context is checked between stages only: once a
// stage starts it runs to completion.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	title := input.Title
	if title == "" {
		title = c.cfg.title
	}

	blocks := pipeline.Assemble(pipeline.SplitLines(input.Text))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := c.renderer.Render(blocks, title)
	if err != nil {
		return nil, err
	}

	res := &ConvertResult{
		Title:      doc.Title,
		Body:       doc.Body,
		HTML:       doc.HTML,
		CharCount:  utf8.RuneCountInString(input.Text),
		BlockCount: len(blocks),
	}

	if input.HTMLOnly {
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	art, err := c.exporter.Export(doc)
	if err != nil {
		return nil, err
	}
	res.Artifact = Artifact(art)

	return res, nil
}

// Export builds a fresh artifact from a previously rendered document, such
// as the markup kept in a history record. The file name uses the current
// time, so repeated exports get distinct names.
func (c *Converter) Export(ctx context.Context, html string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	art, err := c.exporter.Export(pipeline.Document{HTML: html})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact(art), nil
}

// ValidateInput rejects empty or whitespace-only text. Convert accepts such
// input and produces an empty document; callers that want to refuse it
// check here first.
func ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}
