package main

import (
	"context"
	"errors"

	doctools "github.com/alnah/go-doctools"
	"github.com/alnah/go-doctools/internal/assets"
	"github.com/alnah/go-doctools/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("usage error")
	ErrReadInput   = errors.New("failed to read input")
	ErrReadCSS     = errors.New("failed to read CSS file")
	ErrWriteOutput = errors.New("failed to write output")
	ErrNotReady    = errors.New("environment is not ready")
)

// hintFor returns an actionable hint for err, or "".
// Config-not-found hints are attached where the config name is known.
func hintFor(err error) string {
	switch {
	case errors.Is(err, doctools.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, doctools.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, doctools.ErrDownloadFailed):
		return hints.ForDownload()
	case errors.Is(err, doctools.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
