package doctools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alnah/go-doctools/internal/assets"
	"github.com/alnah/go-doctools/internal/fileutil"
	doclog "github.com/alnah/go-doctools/internal/log"
	"github.com/alnah/go-doctools/internal/pipeline"
)

// rasterizerSource hands out rasterization slots. RasterizerPool implements it.
type rasterizerSource interface {
	rasterize(ctx context.Context, filePath string, opts *rasterOptions) ([]byte, error)
}

// Compile-time interface check.
var _ rasterizerSource = (*RasterizerPool)(nil)

// TableRenderer converts markdown tables to images.
type TableRenderer struct {
	loader       assets.AssetLoader
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	cssInjector  pipeline.CSSInjector
	raster       rasterizerSource
	baseStyle    string
	workDir      string
	logger       *slog.Logger
}

// TableOption configures a TableRenderer.
type TableOption func(*TableRenderer)

// WithTableStyle sets the base style: a style name, a CSS file path, or
// inline CSS. Caller CSS passed to Render is applied after it.
func WithTableStyle(ref string) TableOption {
	return func(t *TableRenderer) { t.baseStyle = ref }
}

// WithAssetLoader replaces the style and template loader.
func WithAssetLoader(l assets.AssetLoader) TableOption {
	return func(t *TableRenderer) {
		if l != nil {
			t.loader = l
		}
	}
}

// WithWorkDir sets the directory relative image paths resolve against.
// Defaults to the process working directory.
func WithWorkDir(dir string) TableOption {
	return func(t *TableRenderer) { t.workDir = dir }
}

// WithTableLogger sets the logger.
func WithTableLogger(l *slog.Logger) TableOption {
	return func(t *TableRenderer) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTableRenderer creates a TableRenderer rasterizing through pool.
func NewTableRenderer(pool *RasterizerPool, opts ...TableOption) *TableRenderer {
	t := &TableRenderer{
		loader:       assets.NewEmbeddedLoader(),
		preprocessor: &pipeline.TablePreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(),
		cssInjector:  &pipeline.CSSInjection{},
		raster:       pool,
		logger:       doclog.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render converts markdownTable to an image at outputPath.
// The image format follows the extension: .jpg/.jpeg give JPEG, anything
// else PNG. The parent directory of outputPath is created. css is applied
// after the base style without validation.
func (t *TableRenderer) Render(ctx context.Context, markdownTable, outputPath, css string) error {
	if strings.TrimSpace(markdownTable) == "" {
		return ErrEmptyTable
	}

	page, err := t.buildPage(ctx, markdownTable, css)
	if err != nil {
		return err
	}

	htmlPath, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := fileutil.EnsureParentDir(outputPath); err != nil {
		return err
	}

	// Goldmark emits a <table> only for well-formed GFM tables.
	selector := "table"
	if !strings.Contains(page, "<table") {
		selector = "body"
	}

	data, err := t.raster.rasterize(ctx, htmlPath, &rasterOptions{
		Selector: selector,
		Format:   formatForPath(outputPath),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil { // #nosec G306 -- images are shared artifacts
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	t.logger.Debug("table rendered", "path", outputPath, "bytes", len(data))
	return nil
}

// buildPage produces the complete HTML document for a table.
func (t *TableRenderer) buildPage(ctx context.Context, markdownTable, css string) (string, error) {
	md := t.preprocessor.PreprocessMarkdown(ctx, markdownTable)

	fragment, err := t.converter.ToHTML(ctx, md)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	tmpl, err := t.loader.LoadTemplate(assets.TableTemplate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	page, err := pipeline.BuildTablePage(tmpl, fragment)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	workDir := t.workDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	page, err = pipeline.RewriteRelativePaths(page, workDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	base, err := resolveStyle(t.loader, t.baseStyle)
	if err != nil {
		return "", err
	}
	page = t.cssInjector.InjectCSS(ctx, page, base)
	page = t.cssInjector.InjectCSS(ctx, page, css)

	return page, ctx.Err()
}

// resolveStyle loads a style reference, mapping a missing style to
// ErrStyleNotFound and an unsafe name to ErrInvalidAssetPath.
func resolveStyle(loader assets.AssetLoader, ref string) (string, error) {
	css, err := assets.ResolveStyle(loader, ref)
	switch {
	case err == nil:
		return css, nil
	case errors.Is(err, assets.ErrStyleNotFound):
		return "", fmt.Errorf("%w: %v", ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrInvalidAssetName), errors.Is(err, assets.ErrPathTraversal):
		return "", fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	default:
		return "", err
	}
}
