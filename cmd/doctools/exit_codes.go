package main

import (
	"errors"
	"os"

	doctools "github.com/alnah/go-doctools"
	"github.com/alnah/go-doctools/internal/config"
)

// Exit codes for the doctools CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, download failed
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, doctools.ErrBrowserConnect) ||
		errors.Is(err, doctools.ErrPageCreate) ||
		errors.Is(err, doctools.ErrPageLoad) ||
		errors.Is(err, doctools.ErrScreenshot) ||
		errors.Is(err, doctools.ErrNoSlideOutput) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, doctools.ErrFileNotFound) ||
		errors.Is(err, doctools.ErrNotHTMLFile) ||
		errors.Is(err, doctools.ErrDownloadFailed) ||
		errors.Is(err, doctools.ErrInvalidImage) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, doctools.ErrNotMarkdown) ||
		errors.Is(err, doctools.ErrInvalidPageID) ||
		errors.Is(err, doctools.ErrPageOutOfRange) ||
		errors.Is(err, doctools.ErrInvalidAspectRatio) ||
		errors.Is(err, doctools.ErrEmptyTable) ||
		errors.Is(err, doctools.ErrInvalidURL) ||
		errors.Is(err, doctools.ErrInvalidArgument) ||
		errors.Is(err, doctools.ErrStyleNotFound) ||
		errors.Is(err, doctools.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
