package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage reports malformed command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	title     string
	prefix    string
	highlight bool
	stdout    bool
	html      bool
	noHistory bool
}

// historyFlags holds flags for the history subcommands.
type historyFlags struct {
	common commonFlags
	output string
	stdout bool
	html   bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	envFile string
	workers int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed output")
}

// newFlagSet returns a silent FlagSet; errors are reported by the caller.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseError keeps flag.ErrHelp recognizable and marks everything else
// as a usage error.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseConvertFlags parses convert command flags.
// Returns the flags and remaining positional arguments.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newFlagSet("convert")

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.title, "title", "t", "", "document title")
	fs.StringVar(&f.prefix, "prefix", "", "artifact file name prefix")
	fs.BoolVar(&f.highlight, "highlight", false, "color fenced code blocks")
	fs.BoolVar(&f.stdout, "stdout", false, "write the document to standard output")
	fs.BoolVar(&f.html, "html", false, "also write the rendered HTML")
	fs.BoolVar(&f.noHistory, "no-history", false, "do not record the conversion")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}

	return f, fs.Args(), nil
}

// parseHistoryFlags parses flags shared by the history subcommands.
func parseHistoryFlags(name string, args []string) (*historyFlags, []string, error) {
	f := &historyFlags{}
	fs := newFlagSet("history " + name)

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output directory (export)")
	fs.BoolVar(&f.stdout, "stdout", false, "write the document to standard output (export)")
	fs.BoolVar(&f.html, "html", false, "print the stored HTML instead of the input (show)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}

	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve")

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (host:port)")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent conversions (0 = auto)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}

	return f, fs.Args(), nil
}

// hasVerboseFlag reports whether -v or --verbose appears in args.
// Used before command dispatch, when no FlagSet has parsed anything yet.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
