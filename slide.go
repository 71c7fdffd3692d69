package doctools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-doctools/internal/assets"
	"github.com/alnah/go-doctools/internal/fileutil"
	doclog "github.com/alnah/go-doctools/internal/log"
	"github.com/alnah/go-doctools/internal/pipeline"
)

// slideMIMEType is the MIME type of exported slides.
const slideMIMEType = "image/jpeg"

// deckFileName is the presentation document written in the scratch directory.
const deckFileName = "deck.html"

// slideFileName names the image for the 1-based slide n.
func slideFileName(n int) string {
	return fmt.Sprintf("slide_%04d.jpg", n)
}

// deckExporter rasterizes every slide of a deck into outDir as
// slide_0001.jpg, slide_0002.jpg, and so on.
type deckExporter interface {
	Export(ctx context.Context, deckPath, outDir string, width, height int) error
}

// rasterDeckExporter exports a one-slide deck through the rasterizer pool.
type rasterDeckExporter struct {
	raster rasterizerSource
}

// Compile-time interface check.
var _ deckExporter = (*rasterDeckExporter)(nil)

// Export captures the first slide section at the deck's size.
func (e *rasterDeckExporter) Export(ctx context.Context, deckPath, outDir string, width, height int) error {
	data, err := e.raster.rasterize(ctx, deckPath, &rasterOptions{
		Selector: `.deck-slide[data-slide="1"]`,
		Width:    width,
		Height:   height,
		Format:   formatJPEG,
	})
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return os.WriteFile(filepath.Join(outDir, slideFileName(1)), data, 0o600)
}

// SlideInspector renders an HTML slide to a JPEG preview.
type SlideInspector struct {
	loader   assets.AssetLoader
	exporter deckExporter
	logger   *slog.Logger
}

// SlideOption configures a SlideInspector.
type SlideOption func(*SlideInspector)

// WithSlideAssetLoader replaces the deck template loader.
func WithSlideAssetLoader(l assets.AssetLoader) SlideOption {
	return func(s *SlideInspector) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithSlideLogger sets the logger.
func WithSlideLogger(l *slog.Logger) SlideOption {
	return func(s *SlideInspector) {
		if l != nil {
			s.logger = l
		}
	}
}

// withDeckExporter replaces the exporter (tests).
func withDeckExporter(e deckExporter) SlideOption {
	return func(s *SlideInspector) { s.exporter = e }
}

// NewSlideInspector creates a SlideInspector rasterizing through pool.
func NewSlideInspector(pool *RasterizerPool, opts ...SlideOption) *SlideInspector {
	s := &SlideInspector{
		loader:   assets.NewEmbeddedLoader(),
		exporter: &rasterDeckExporter{raster: pool},
		logger:   doclog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inspect renders htmlFile as a single slide with the given aspect ratio.
//
// The path must name an existing file ending in exactly ".html"; failures
// return a *PathError wrapping ErrNotHTMLFile with the absolute path.
// All intermediate files live in a temporary directory that is removed
// before Inspect returns.
func (s *SlideInspector) Inspect(ctx context.Context, htmlFile string, aspect AspectRatio) (*SlideImage, error) {
	absPath, err := filepath.Abs(htmlFile)
	if err != nil {
		return nil, &PathError{Err: ErrNotHTMLFile, Path: htmlFile}
	}
	if !fileutil.FileExists(absPath) || !strings.HasSuffix(absPath, ".html") {
		return nil, &PathError{Err: ErrNotHTMLFile, Path: absPath}
	}
	if err := aspect.Validate(); err != nil {
		return nil, err
	}

	workDir, cleanup, err := fileutil.MakeTempDir("slide")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	deckPath, err := s.writeDeck(absPath, workDir, aspect)
	if err != nil {
		return nil, err
	}

	width, height := aspect.Dimensions()
	if err := s.exporter.Export(ctx, deckPath, workDir, width, height); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(workDir, slideFileName(1))) // #nosec G304 -- inside our temp dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSlideOutput
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoSlideOutput
	}

	s.logger.Debug("slide inspected", "path", absPath, "aspect_ratio", string(aspect), "bytes", len(data))
	return &SlideImage{Data: data, MIMEType: slideMIMEType}, nil
}

// writeDeck converts the slide into deck.html inside workDir.
func (s *SlideInspector) writeDeck(slidePath, workDir string, aspect AspectRatio) (string, error) {
	slideHTML, err := os.ReadFile(slidePath) // #nosec G304 -- caller-provided slide
	if err != nil {
		return "", err
	}

	tmpl, err := s.loader.LoadTemplate(assets.DeckTemplate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	width, height := aspect.Dimensions()
	deck, err := pipeline.BuildSlideDeck(tmpl, string(slideHTML), filepath.Dir(slidePath), width, height)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	deckPath := filepath.Join(workDir, deckFileName)
	if err := os.WriteFile(deckPath, []byte(deck), 0o600); err != nil {
		return "", err
	}
	return deckPath, nil
}
