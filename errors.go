package md2doc

import (
	"errors"

	"github.com/alnah/go-md2doc/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput = errors.New("input text cannot be empty")

	// Pipeline failures, shared with the internal stages so errors.Is
	// matches either way.
	ErrRender       = pipeline.ErrRender
	ErrExportFailed = pipeline.ErrExportFailed

	// Delivery errors.
	ErrDeliveryFailed  = errors.New("delivery failed")
	ErrInvalidArtifact = errors.New("invalid artifact")
	ErrHandleReleased  = errors.New("artifact handle already released")

	// Option validation errors.
	ErrInvalidPrefix = errors.New("invalid filename prefix")
)
