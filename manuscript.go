package doctools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-doctools/internal/fileutil"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// PageDelimiter separates manuscript pages. It is matched literally.
const PageDelimiter = "\n---\n"

var (
	externalImagePattern = regexp.MustCompile(`(?i)!\[.*?\]\(https?://.*?\)`)
	imagePattern         = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
)

// Manuscript warning messages.
const (
	warnExternalImages = "External image links detected, please downloading and replace them with local paths."
	warnMissingImage   = "Image file does not exist: %s, please check if there is a format error or file missing."
	warnMissingLabel   = "Image file %s is missing an alt text label; please add a descriptive label about the image's type, purpose, and content for better accessibility."
	warnImageReuse     = "Image file %s:%s is used %d times in the document, please check if it's an appropriate usage."
)

// SplitPages splits a manuscript on PageDelimiter and drops blank pages.
// Page text is returned as-is, without trimming.
func SplitPages(markdown string) []string {
	parts := strings.Split(markdown, PageDelimiter)
	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			pages = append(pages, p)
		}
	}
	return pages
}

// ExtractImageReferences returns every ![label](path) in text, in order.
func ExtractImageReferences(text string) []ImageReference {
	matches := imagePattern.FindAllStringSubmatch(text, -1)
	refs := make([]ImageReference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, ImageReference{Label: m[1], Path: m[2]})
	}
	return refs
}

// ManuscriptInspector extracts and lints manuscript pages.
type ManuscriptInspector struct {
	logger *slog.Logger
}

// ManuscriptOption configures a ManuscriptInspector.
type ManuscriptOption func(*ManuscriptInspector)

// WithManuscriptLogger sets the logger.
func WithManuscriptLogger(l *slog.Logger) ManuscriptOption {
	return func(m *ManuscriptInspector) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManuscriptInspector creates a ManuscriptInspector.
func NewManuscriptInspector(opts ...ManuscriptOption) *ManuscriptInspector {
	m := &ManuscriptInspector{logger: doclog.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Inspect returns page pageID (1-based) of the markdown file at path with
// its image warnings.
//
// Checks run in order and stop at the first failure: the file exists
// (*PathError wrapping ErrFileNotFound), it has a .md extension in any case
// (*PathError wrapping ErrNotMarkdown), pageID >= 1 (ErrInvalidPageID), and
// pageID does not exceed the page count (ErrPageOutOfRange).
//
// Relative image paths resolve against the manuscript's directory, not the
// process working directory.
func (m *ManuscriptInspector) Inspect(ctx context.Context, path string, pageID int) (*InspectionResult, error) {
	if !fileutil.FileExists(path) {
		return nil, &PathError{Err: ErrFileNotFound, Path: path}
	}
	if !fileutil.HasExtension(path, ".md") {
		return nil, &PathError{Err: ErrNotMarkdown, Path: path}
	}
	if pageID < 1 {
		return nil, ErrInvalidPageID
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- caller-provided manuscript
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	markdown := string(raw)

	pages := SplitPages(markdown)
	if pageID > len(pages) {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageID, len(pages))
	}

	page := pages[pageID-1]
	result := &InspectionResult{
		PageID:      fmt.Sprintf("%02d/%02d", pageID, len(pages)),
		PageContent: page,
		Warnings:    lintPage(page, markdown, filepath.Dir(path)),
	}

	m.logger.Debug("manuscript inspected",
		"path", path,
		"page", result.PageID,
		"warnings", len(result.Warnings))
	return result, nil
}

// lintPage checks the image references on page. Duplicate counts are taken
// over the whole document; relative paths resolve against baseDir.
func lintPage(page, document, baseDir string) []string {
	warnings := []string{}

	if externalImagePattern.MatchString(page) {
		warnings = append(warnings, warnExternalImages)
	}

	for _, ref := range ExtractImageReferences(page) {
		if ref.IsExternal() {
			continue
		}

		if !imageExists(ref.Path, baseDir) {
			warnings = append(warnings, fmt.Sprintf(warnMissingImage, ref.Path))
		}
		if strings.TrimSpace(ref.Label) == "" {
			warnings = append(warnings, fmt.Sprintf(warnMissingLabel, ref.Path))
		}
		if n := strings.Count(document, ref.Path); n != 1 {
			warnings = append(warnings, fmt.Sprintf(warnImageReuse, ref.Label, ref.Path, n))
		}
	}

	return warnings
}

// imageExists reports whether ref names an existing file.
func imageExists(ref, baseDir string) bool {
	if ref == "" {
		return false
	}
	p := ref
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	_, err := os.Stat(p)
	return err == nil
}
