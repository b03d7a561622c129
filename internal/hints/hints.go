// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForListen returns hints for a server that cannot bind its address.
// Inside a container a loopback address is unreachable from the host.
func ForListen(addr string) string {
	var hints []string

	hints = append(hints, "check the port is free or pick another with --addr")

	if IsInContainer() && (strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "127.0.0.1:")) {
		hints = append(hints, "bind 0.0.0.0 to expose the server outside the container")
	}

	return formatHints(hints)
}

// ForEmptyInput returns a hint for rejected empty or whitespace-only input.
func ForEmptyInput() string {
	return format("pass a file with content, or pipe text and use - as the input")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the go-md2doc config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-md2doc") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForHistoryNotFound returns a hint for an unknown history record ID.
func ForHistoryNotFound() string {
	return format("run 'md2doc history list' to see stored IDs")
}

// ForHistoryDisabled returns a hint when history commands run with history off.
func ForHistoryDisabled() string {
	return format("set history.enabled: true in the config file")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
