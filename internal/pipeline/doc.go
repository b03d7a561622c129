// Package pipeline implements the text-to-document conversion pipeline.
//
// The stages run strictly in order, each one a pure transformation over
// input that is already in memory:
//   - Line splitting (line ending normalization)
//   - Block assembly: a line-oriented state machine that classifies each
//     line as a heading, list item, code fence, table, quote, rule or
//     paragraph, delegating to the inline formatter and the table parser
//   - Rendering: block markup wrapped in the fixed document shell, with the
//     theme stylesheet injected inline
//   - Export: word-processor namespaces on the root element, a UTF-8 byte
//     order mark, and a timestamped file name
//
// Handing the finished artifact to a save/download mechanism is handled by
// the root md2doc package. Nothing in this package touches the network or
// the file system.
package pipeline
