package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"

	"github.com/alnah/go-md2doc/internal/hints"
	"github.com/alnah/go-md2doc/internal/history"
	"github.com/alnah/go-md2doc/internal/server"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

// runServe runs the HTTP server until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printServeUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	// Variables already set in the environment win over the dotenv file.
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", flags.envFile, err)
		}
	}

	cfg, err := loadConfig(flags.common.config, env.Stderr)
	if err != nil {
		return withConfigHint(err)
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.workers != 0 {
		cfg.Server.Workers = flags.workers
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: --workers: %w", ErrUsage, err)
		}
	}

	logLevel := slog.LevelInfo
	switch {
	case flags.common.verbose:
		logLevel = slog.LevelDebug
	case flags.common.quiet:
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(env.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	conv, err := newConverter(cfg, env)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = openHistory(cfg)
		if err != nil {
			return err
		}
	}

	srv := server.New(server.Options{
		Converter:    conv,
		Store:        store,
		Logger:       logger,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Workers:      cfg.Server.Workers,
		Now:          env.Now,
		Version:      Version,
	})

	ready := func(addr net.Addr) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Listening on http://%s\n", addr)
		}
	}

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr, ready); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForListen(cfg.Server.Addr))
	}
	return nil
}
