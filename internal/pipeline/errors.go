package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	ErrRender       = errors.New("document rendering failed")
	ErrExportFailed = errors.New("export failed")
)
