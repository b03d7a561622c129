package main

import (
	"errors"
	"testing"

	flag "github.com/spf13/pflag"
)

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	f, positional, err := parseConvertFlags([]string{"-o", "out", "-t", "Title", "--prefix", "p", "--highlight", "--stdout", "--html", "--no-history", "-q", "in.md"})
	if err != nil {
		t.Fatalf("parseConvertFlags() error = %v", err)
	}
	if f.output != "out" || f.title != "Title" || f.prefix != "p" {
		t.Errorf("string flags = %+v", f)
	}
	if !f.highlight || !f.stdout || !f.html || !f.noHistory || !f.common.quiet {
		t.Errorf("bool flags = %+v", f)
	}
	if len(positional) != 1 || positional[0] != "in.md" {
		t.Errorf("positional = %v", positional)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		parse   func() error
		wantErr error
	}{
		{"convert unknown flag", func() error { _, _, err := parseConvertFlags([]string{"--bogus"}); return err }, ErrUsage},
		{"convert help", func() error { _, _, err := parseConvertFlags([]string{"-h"}); return err }, flag.ErrHelp},
		{"history missing value", func() error { _, _, err := parseHistoryFlags("export", []string{"-o"}); return err }, ErrUsage},
		{"serve help", func() error { _, _, err := parseServeFlags([]string{"--help"}); return err }, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.parse(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseServeFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, _, err := parseServeFlags(nil)
	if err != nil {
		t.Fatalf("parseServeFlags() error = %v", err)
	}
	if f.addr != "" {
		t.Errorf("addr = %q, want empty so config decides", f.addr)
	}
	if f.envFile != ".env" {
		t.Errorf("envFile = %q, want .env", f.envFile)
	}
}

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"convert", "-v", "a.md"}, true},
		{[]string{"serve", "--verbose"}, true},
		{[]string{"convert", "a.md"}, false},
		{[]string{"convert", "--", "-v"}, false},
	}

	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
