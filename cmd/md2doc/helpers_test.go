package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedTime = time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)

// testEnv returns an Environment with captured output and a fixed clock.
func testEnv(stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &Environment{
		Now:    func() time.Time { return fixedTime },
		Stdin:  strings.NewReader(stdin),
		Stdout: stdout,
		Stderr: stderr,
	}, stdout, stderr
}

// writeConfig writes a config file in dir that keeps history under dir.
func writeConfig(t *testing.T, dir string, historyEnabled bool) string {
	t.Helper()
	path := filepath.Join(dir, "md2doc.yaml")
	content := fmt.Sprintf("history:\n  enabled: %t\n  path: %s\n", historyEnabled, filepath.Join(dir, "history.yaml"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// writeInput writes an input text file in dir.
func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	return path
}

func expectedFilename(prefix string) string {
	return fmt.Sprintf("%s_%d.doc", prefix, fixedTime.UnixMilli())
}
