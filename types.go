package md2doc

import (
	"fmt"
	"time"

	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// Defaults applied when no option overrides them.
const (
	DefaultTitle          = pipeline.DefaultTitle
	DefaultFilenamePrefix = pipeline.DefaultFilenamePrefix
	DocExtension          = pipeline.DocExtension
	DocContentType        = pipeline.DocContentType
)

// Input contains conversion parameters.
type Input struct {
	Text     string // Markdown-like source text
	Title    string // Document <title>; empty uses the converter's title
	HTMLOnly bool   // Skip export; Artifact is left empty
}

// ConvertResult contains the outputs of a conversion.
type ConvertResult struct {
	Title      string   // Title placed in the document
	Body       string   // Block markup only
	HTML       string   // Complete self-contained document
	CharCount  int      // Characters (runes) in the input text
	BlockCount int      // Top-level blocks assembled from the input
	Artifact   Artifact // Exported payload, empty when Input.HTMLOnly is set
}

// Artifact is an exported payload and its suggested file name.
type Artifact struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Validate checks that the artifact can be handed to a sink.
func (a Artifact) Validate() error {
	if a.Data == nil {
		return fmt.Errorf("%w: no data", ErrInvalidArtifact)
	}
	if err := fileutil.ValidateFilename(a.Filename); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return nil
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	title     string
	prefix    string
	highlight bool
	now       func() time.Time
}

// WithTitle sets the document title used when Input.Title is empty.
func WithTitle(title string) Option {
	return func(c *Converter) {
		c.cfg.title = title
	}
}

// WithFilenamePrefix sets the artifact file name prefix.
// NewConverter rejects prefixes containing path separators.
func WithFilenamePrefix(prefix string) Option {
	return func(c *Converter) {
		c.cfg.prefix = prefix
	}
}

// WithHighlighting colors fenced code blocks that name a known language.
func WithHighlighting() Option {
	return func(c *Converter) {
		c.cfg.highlight = true
	}
}

// WithClock sets the time source used for artifact file names.
// Panics if now is nil (programmer error).
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("md2doc: WithClock requires a non-nil clock")
	}
	return func(c *Converter) {
		c.cfg.now = now
	}
}
