package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/hints"
	"github.com/alnah/go-md2doc/internal/history"
	flag "github.com/spf13/pflag"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput     = errors.New("no input specified")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

// File permission constants.
const (
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinArg selects standard input as the conversion source.
const stdinArg = "-"

// htmlExtension names the optional HTML companion file.
const htmlExtension = ".html"

// runConvert orchestrates a single conversion.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConvertUsage(env.Stdout)
			return nil
		}
		return err
	}

	if len(positional) == 0 {
		return fmt.Errorf("%w: pass a file or - for standard input", ErrNoInput)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: convert takes one input, got %d", ErrUsage, len(positional))
	}

	cfg, err := loadConfig(flags.common.config, env.Stderr)
	if err != nil {
		return withConfigHint(err)
	}
	mergeConvertFlags(flags, cfg)

	text, err := readInput(positional[0], env.Stdin)
	if err != nil {
		return err
	}
	if err := md2doc.ValidateInput(text); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForEmptyInput())
	}

	conv, err := newConverter(cfg, env)
	if err != nil {
		return err
	}

	res, err := conv.Convert(ctx, md2doc.Input{Text: text})
	if err != nil {
		return fmt.Errorf("converting %s: %w", positional[0], err)
	}

	// Status lines go to stderr when stdout carries the document.
	status := env.Stdout
	if flags.stdout {
		status = env.Stderr
	}

	if err := deliverArtifact(ctx, res.Artifact, cfg.Output.DefaultDir, flags.stdout, env.Stdout); err != nil {
		return err
	}
	if !flags.common.quiet && !flags.stdout {
		fmt.Fprintf(status, "Created %s\n", md2doc.FileSink{Dir: cfg.Output.DefaultDir}.Path(res.Artifact.Filename))
	}

	if flags.html {
		htmlPath, err := writeHTML(cfg.Output.DefaultDir, res.Artifact.Filename, res.HTML)
		if err != nil {
			return err
		}
		if !flags.common.quiet {
			fmt.Fprintf(status, "Created %s\n", htmlPath)
		}
	}

	if flags.common.verbose {
		fmt.Fprintf(status, "%d characters, %d blocks\n", res.CharCount, res.BlockCount)
	}

	if cfg.History.Enabled {
		rec := md2doc.NewHistoryRecord(text, res, env.Now())
		if err := recordHistory(cfg, rec); err != nil {
			// The document exists; losing the record is not fatal.
			fmt.Fprintf(env.Stderr, "warning: %v\n", err)
		} else if flags.common.verbose {
			fmt.Fprintf(status, "Recorded %s\n", rec.ID)
		}
	}

	return nil
}

// mergeConvertFlags applies CLI flags over config values (CLI wins).
func mergeConvertFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.title != "" {
		cfg.Document.Title = flags.title
	}
	if flags.prefix != "" {
		cfg.Output.Prefix = flags.prefix
	}
	if flags.highlight {
		cfg.Document.Highlight = true
	}
	if flags.noHistory {
		cfg.History.Enabled = false
	}
}

// newConverter builds a Converter from the effective configuration.
func newConverter(cfg *config.Config, env *Environment) (*md2doc.Converter, error) {
	opts := []md2doc.Option{
		md2doc.WithTitle(cfg.Document.Title),
		md2doc.WithFilenamePrefix(cfg.Output.Prefix),
		md2doc.WithClock(env.Now),
	}
	if cfg.Document.Highlight {
		opts = append(opts, md2doc.WithHighlighting())
	}
	return md2doc.NewConverter(opts...)
}

// readInput reads the named file, or stdin when name is "-".
func readInput(name string, stdin io.Reader) (string, error) {
	if name == stdinArg {
		if stdin == nil {
			return "", fmt.Errorf("%w: standard input unavailable", ErrReadInput)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name) // #nosec G304 -- input path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: %w", ErrReadInput, name, os.ErrNotExist)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrReadInput, name, err)
	}
	return string(data), nil
}

// deliverArtifact hands the artifact to stdout or to the output directory.
func deliverArtifact(ctx context.Context, art md2doc.Artifact, dir string, toStdout bool, stdout io.Writer) error {
	var sink md2doc.Sink = md2doc.FileSink{Dir: dir}
	if toStdout {
		sink = md2doc.WriterSink{W: stdout}
	}

	if err := md2doc.Deliver(ctx, art, sink); err != nil {
		if !toStdout {
			return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
		}
		return err
	}
	return nil
}

// writeHTML saves the rendered document next to the artifact, sharing its
// base name.
func writeHTML(dir, artifactName, html string) (string, error) {
	name := strings.TrimSuffix(artifactName, md2doc.DocExtension) + htmlExtension
	path := md2doc.FileSink{Dir: dir}.Path(name)

	if err := fileutil.WriteFileAtomic(path, []byte(html), filePermissions); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWriteOutput, path, err)
	}
	return path, nil
}

// openHistory returns the store configured by cfg.
func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = config.DefaultHistoryPath()
		if err != nil {
			return nil, err
		}
	}
	return history.NewStore(filepath.Clean(path), cfg.History.Limit), nil
}

// recordHistory appends rec to the configured history store.
func recordHistory(cfg *config.Config, rec md2doc.HistoryRecord) error {
	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	if err := store.Add(history.Record(rec)); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// withConfigHint appends a hint when a named config could not be found.
func withConfigHint(err error) error {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	var searched []string
	if _, after, ok := strings.Cut(err.Error(), "tried "); ok {
		searched = strings.Split(after, ", ")
	}
	return fmt.Errorf("%w%s", err, hints.ForConfigNotFound(searched))
}
