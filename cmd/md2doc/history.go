package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/hints"
	"github.com/alnah/go-md2doc/internal/history"
	flag "github.com/spf13/pflag"
)

// ErrHistoryDisabled is returned by history commands when recording is off.
var ErrHistoryDisabled = errors.New("history is disabled")

// shortIDLength is how much of a record ID the listing shows.
const shortIDLength = 8

// runHistory dispatches the history subcommands.
func runHistory(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printHistoryUsage(env.Stderr)
		return fmt.Errorf("%w: missing history subcommand", ErrUsage)
	}

	sub, rest := args[0], args[1:]
	if sub == "-h" || sub == "--help" {
		printHistoryUsage(env.Stdout)
		return nil
	}

	flags, positional, err := parseHistoryFlags(sub, rest)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHistoryUsage(env.Stdout)
			return nil
		}
		return err
	}

	cfg, err := loadConfig(flags.common.config, env.Stderr)
	if err != nil {
		return withConfigHint(err)
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("%w%s", ErrHistoryDisabled, hints.ForHistoryDisabled())
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		return historyList(store, cfg, env.Stdout)
	case "show":
		id, err := singleID(positional)
		if err != nil {
			return err
		}
		return historyShow(store, id, flags.html, env.Stdout)
	case "export":
		id, err := singleID(positional)
		if err != nil {
			return err
		}
		return historyExport(ctx, store, id, cfg, flags, env)
	case "clear":
		if err := store.Clear(); err != nil {
			return err
		}
		if !flags.common.quiet {
			fmt.Fprintln(env.Stdout, "History cleared")
		}
		return nil
	default:
		printHistoryUsage(env.Stderr)
		return fmt.Errorf("%w: unknown history subcommand %q", ErrUsage, sub)
	}
}

// singleID extracts the one record ID a subcommand expects.
func singleID(positional []string) (string, error) {
	if len(positional) != 1 {
		return "", fmt.Errorf("%w: expected one record id, got %d", ErrUsage, len(positional))
	}
	return positional[0], nil
}

// historyList prints records newest first as an aligned table.
func historyList(store *history.Store, cfg *config.Config, w io.Writer) error {
	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded")
		return nil
	}

	layout, err := dateutil.Compile(cfg.History.DateFormat)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCHARS\tPREVIEW")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", shortID(r.ID), layout.Format(r.Timestamp.Local()), r.CharCount, oneLine(r.Preview))
	}
	return tw.Flush()
}

// historyShow prints the stored input, or the stored HTML when asHTML is set.
func historyShow(store *history.Store, id string, asHTML bool, w io.Writer) error {
	rec, err := getRecord(store, id)
	if err != nil {
		return err
	}

	out := rec.Input
	if asHTML {
		out = rec.HTML
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}

// historyExport builds a fresh artifact from a stored record.
func historyExport(ctx context.Context, store *history.Store, id string, cfg *config.Config, flags *historyFlags, env *Environment) error {
	rec, err := getRecord(store, id)
	if err != nil {
		return err
	}

	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}

	conv, err := newConverter(cfg, env)
	if err != nil {
		return err
	}

	art, err := conv.Export(ctx, rec.HTML)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", shortID(rec.ID), err)
	}

	if err := deliverArtifact(ctx, art, cfg.Output.DefaultDir, flags.stdout, env.Stdout); err != nil {
		return err
	}
	if !flags.common.quiet && !flags.stdout {
		fmt.Fprintf(env.Stdout, "Created %s\n", md2doc.FileSink{Dir: cfg.Output.DefaultDir}.Path(art.Filename))
	}
	return nil
}

// getRecord looks up a record and adds a hint for unknown IDs.
func getRecord(store *history.Store, id string) (history.Record, error) {
	rec, err := store.Get(id)
	if errors.Is(err, history.ErrNotFound) {
		return history.Record{}, fmt.Errorf("%w%s", err, hints.ForHistoryNotFound())
	}
	return rec, err
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// oneLine flattens line breaks so a preview fits one table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
