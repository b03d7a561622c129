// Package md2doc converts Markdown-like text into a word-processor document.
//
// # Quick Start
//
// Create a converter, convert text, and hand the artifact to a sink:
//
//	conv, err := md2doc.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, md2doc.Input{
//	    Text: "# Hello\n\nSome *italic* and **bold**.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = md2doc.Deliver(ctx, result.Artifact, md2doc.FileSink{Dir: "out"})
//
// The result carries the rendered document (result.HTML), the block markup
// alone (result.Body) and the exported artifact: UTF-8 bytes with a byte
// order mark, a <prefix>_<unix ms>.doc file name and the application/msword
// content type.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Line splitting (CRLF and CR normalized to LF)
//  2. Block assembly: headings, lists, fenced code, tables, quotes, rules
//     and paragraphs, with inline emphasis, code, links and escapes
//  3. Rendering into a self-contained document with an inline theme
//  4. Export: Office namespaces on the root element and a byte order mark
//
// Every stage is a pure in-memory transformation. The context passed to
// Convert is checked between stages; a cancelled context stops the next
// stage from running but never interrupts one.
//
// Malformed input never fails: ragged tables, unterminated fences and
// unknown syntax degrade to best-effort output. Empty input converts to a
// document with an empty body; use ValidateInput to reject it before
// calling Convert.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2doc.NewConverter(
//	    md2doc.WithTitle("Meeting notes"),
//	    md2doc.WithFilenamePrefix("notes"),
//	    md2doc.WithHighlighting(),
//	)
//
// # Delivery
//
// Deliver hands an artifact to a Sink through a scoped Handle that is
// released when the hand-off ends, whether the sink succeeds, fails or
// panics. FileSink writes atomically into a directory and WriterSink
// streams to any io.Writer.
//
// # History
//
// NewHistoryRecord builds the record a caller may persist for later
// redisplay or re-export. The converter itself keeps no state between
// calls and is safe for concurrent use.
package md2doc
