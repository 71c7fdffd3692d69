package doctools

import "errors"

// Sentinel errors for library operations.
var (
	// Input validation errors.
	ErrFileNotFound       = errors.New("file does not exist")
	ErrNotMarkdown        = errors.New("file is not a markdown file")
	ErrInvalidPageID      = errors.New("page id must be a positive integer")
	ErrPageOutOfRange     = errors.New("page id exceeds page count")
	ErrNotHTMLFile        = errors.New("path does not exist or is not an HTML file")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
	ErrEmptyTable         = errors.New("markdown table cannot be empty")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrInvalidArgument    = errors.New("invalid tool argument")

	// Download errors.
	ErrDownloadFailed = errors.New("download failed")
	ErrInvalidImage   = errors.New("not a valid image file")

	// Rendering errors.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("screenshot failed")
	ErrNoSlideOutput  = errors.New("slide rasterization produced no output")
	ErrPoolClosed     = errors.New("rasterizer pool is closed")

	// Asset errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// PathError records the path an input validation failure refers to.
type PathError struct {
	Err  error
	Path string
}

func (e *PathError) Error() string { return e.Err.Error() + ": " + e.Path }

func (e *PathError) Unwrap() error { return e.Err }
