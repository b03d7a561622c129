package main

import (
	"errors"
	"os"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/history"
)

// Exit codes for md2doc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful command
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied
	ExitExport  = 4 // Artifact could not be built or delivered
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Export and delivery errors (exit 4)
	if errors.Is(err, md2doc.ErrExportFailed) ||
		errors.Is(err, md2doc.ErrDeliveryFailed) ||
		errors.Is(err, md2doc.ErrInvalidArtifact) {
		return ExitExport
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, history.ErrCorrupt) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, md2doc.ErrEmptyInput) ||
		errors.Is(err, md2doc.ErrInvalidPrefix) ||
		errors.Is(err, history.ErrNotFound) ||
		errors.Is(err, history.ErrAmbiguousID) ||
		errors.Is(err, history.ErrEmptyID) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrHistoryDisabled) {
		return ExitUsage
	}

	return ExitGeneral
}
