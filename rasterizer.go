package doctools

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-doctools/internal/fileutil"
	"github.com/alnah/go-doctools/internal/process"
)

// DefaultRenderTimeout bounds page loads and element lookups.
const DefaultRenderTimeout = 30 * time.Second

// rasterFormat is the encoded image format of a screenshot.
type rasterFormat string

const (
	formatPNG  rasterFormat = "png"
	formatJPEG rasterFormat = "jpeg"
)

// defaultJPEGQuality is used for JPEG screenshots.
const defaultJPEGQuality = 90

// rasterOptions describes one screenshot.
type rasterOptions struct {
	Selector string // element to capture; empty captures the viewport
	Width    int    // viewport width in CSS px, 0 keeps the browser default
	Height   int    // viewport height in CSS px
	Format   rasterFormat
	Quality  int // JPEG only
}

// htmlRasterizer renders a local HTML file to image bytes.
// Implementations are not safe for concurrent use; RasterizerPool hands each
// instance to one caller at a time.
type htmlRasterizer interface {
	Rasterize(ctx context.Context, filePath string, opts *rasterOptions) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ htmlRasterizer = (*rodRasterizer)(nil)

// rasterConfig holds browser launch settings.
type rasterConfig struct {
	timeout    time.Duration
	browserBin string
	noSandbox  bool
}

// RasterOption configures browser instances.
type RasterOption func(*rasterConfig)

// WithRenderTimeout sets the page load timeout.
func WithRenderTimeout(d time.Duration) RasterOption {
	return func(c *rasterConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBrowserBin uses a specific Chrome binary instead of rod's managed one.
func WithBrowserBin(path string) RasterOption {
	return func(c *rasterConfig) { c.browserBin = path }
}

// WithNoSandbox disables the Chrome sandbox (containers, CI).
func WithNoSandbox(disable bool) RasterOption {
	return func(c *rasterConfig) { c.noSandbox = disable }
}

// rodRasterizer implements htmlRasterizer using go-rod.
// Rod downloads Chromium on first run if no binary is configured.
type rodRasterizer struct {
	cfg      rasterConfig
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRasterizer(cfg rasterConfig) *rodRasterizer {
	if cfg.timeout <= 0 {
		cfg.timeout = DefaultRenderTimeout
	}
	return &rodRasterizer{cfg: cfg}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRasterizer) ensureBrowser() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	bin := r.cfg.browserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// Containers and CI runners usually lack the user namespaces the sandbox needs.
	if r.cfg.noSandbox || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close releases browser resources and kills leftover Chrome children.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			if killErr := process.KillTree(pid); killErr != nil {
				r.launcher.Kill()
			}
		}
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// Rasterize opens filePath in headless Chrome and captures it.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRasterizer) Rasterize(ctx context.Context, filePath string, opts *rasterOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &rasterOptions{Format: formatPNG}
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	if opts.Width > 0 && opts.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
		}
	}

	// Remaining context time wins over the configured timeout.
	timeout := r.cfg.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if err := page.Navigate(pathToFileURL(absPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, quality := screenshotFormat(opts)

	if opts.Selector == "" {
		req := &proto.PageCaptureScreenshot{Format: format}
		if format == proto.PageCaptureScreenshotFormatJpeg {
			req.Quality = &quality
		}
		data, err := page.Screenshot(false, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
		}
		return data, nil
	}

	el, err := page.Element(opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("%w: locating %q: %v", ErrScreenshot, opts.Selector, err)
	}
	data, err := el.Screenshot(format, quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return data, nil
}

// screenshotFormat maps rasterOptions to CDP screenshot parameters.
func screenshotFormat(opts *rasterOptions) (proto.PageCaptureScreenshotFormat, int) {
	if opts.Format == formatJPEG {
		q := opts.Quality
		if q <= 0 || q > 100 {
			q = defaultJPEGQuality
		}
		return proto.PageCaptureScreenshotFormatJpeg, q
	}
	return proto.PageCaptureScreenshotFormatPng, 0
}

// formatForPath picks JPEG for .jpg/.jpeg targets and PNG otherwise.
func formatForPath(path string) rasterFormat {
	if fileutil.HasExtension(path, ".jpg", ".jpeg") {
		return formatJPEG
	}
	return formatPNG
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
