package doctools

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/alnah/go-doctools/internal/fileutil"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// Fetch defaults.
const (
	DefaultFetchRetries = 3
	DefaultFetchBackoff = time.Second
	DefaultChunkSize    = 8192
)

// Fetcher downloads a URL to a local file with retries.
// Create with NewFetcher; safe for concurrent use.
type Fetcher struct {
	client     *http.Client
	retries    int
	backoff    time.Duration
	chunkSize  int
	timeout    time.Duration
	userAgents UserAgentSource
	insecure   bool
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client. The client's TLS settings are
// used as-is; WithInsecureSkipVerify has no effect on it.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithRetries sets the number of attempts per download (minimum 1).
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.retries = n
		}
	}
}

// WithBackoff sets the base delay; attempt i waits i*d before starting.
func WithBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d >= 0 {
			f.backoff = d
		}
	}
}

// WithChunkSize sets the streaming buffer size in bytes.
func WithChunkSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// WithAttemptTimeout bounds each attempt. Zero means no limit.
func WithAttemptTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d >= 0 {
			f.timeout = d
		}
	}
}

// WithUserAgents sets the User-Agent source.
func WithUserAgents(src UserAgentSource) FetcherOption {
	return func(f *Fetcher) {
		if src != nil {
			f.userAgents = src
		}
	}
}

// WithInsecureSkipVerify toggles TLS certificate verification for the
// default client. Verification is skipped unless this is set to false.
func WithInsecureSkipVerify(skip bool) FetcherOption {
	return func(f *Fetcher) { f.insecure = skip }
}

// WithFetchLogger sets the logger for attempt diagnostics.
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// withSleep replaces the backoff sleep (tests).
func withSleep(fn func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) { f.sleep = fn }
}

// NewFetcher creates a Fetcher with default settings.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		retries:    DefaultFetchRetries,
		backoff:    DefaultFetchBackoff,
		chunkSize:  DefaultChunkSize,
		userAgents: RandomUserAgents(nil),
		insecure:   true,
		logger:     doclog.Discard(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newHTTPClient(f.insecure)
	}
	return f
}

// newHTTPClient clones the default transport so TLS settings stay local.
// Redirects are followed (http.Client default).
func newHTTPClient(insecure bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		tr.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402 -- downloads target arbitrary hosts with broken chains
		}
	}
	return &http.Client{Transport: tr}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Download fetches rawURL into outputPath.
//
// The parent directory is created first. Transient failures (transport
// errors, interrupted bodies, HTTP 408/425/429/5xx) are retried; other
// failures stop immediately. When every attempt fails the error wraps
// ErrDownloadFailed and the last cause, and any partial file written by
// the download is removed.
//
// If outputPath has an image extension, the file header is decoded and the
// resolution returned; a decode failure wraps ErrInvalidImage.
func (f *Fetcher) Download(ctx context.Context, rawURL, outputPath string) (*DownloadResult, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	if outputPath == "" {
		return nil, fmt.Errorf("%w: output path is empty", ErrInvalidArgument)
	}

	if err := fileutil.EnsureParentDir(outputPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	var (
		lastErr error
		touched bool
	)
	for attempt := 0; attempt < f.retries; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, time.Duration(attempt)*f.backoff); err != nil {
				lastErr = err
				break
			}
		}

		wrote, err := f.attempt(ctx, rawURL, outputPath)
		touched = touched || wrote
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err

		f.logger.Debug("download attempt failed",
			"url", rawURL,
			"attempt", attempt+1,
			"of", f.retries,
			"error", err)

		if !isTransient(err) || ctx.Err() != nil {
			break
		}
	}

	if lastErr != nil {
		if touched {
			_ = os.Remove(outputPath)
		}
		f.logger.Warn("download failed", "url", rawURL, "path", outputPath, "error", lastErr)
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, lastErr)
	}

	result := &DownloadResult{Path: outputPath}
	if fileutil.HasExtension(outputPath, imageExtensions...) {
		w, h, err := imageDimensions(outputPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		result.Width, result.Height = w, h
	}

	f.logger.Debug("download complete", "url", rawURL, "path", outputPath)
	return result, nil
}

// attempt performs one GET and streams the body to outputPath.
// wrote reports whether outputPath was created or truncated.
func (f *Fetcher) attempt(ctx context.Context, rawURL, outputPath string) (wrote bool, err error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, permanent(fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}
	req.Header.Set("User-Agent", f.userAgents.UserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return false, transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return false, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G302 G304 -- caller's download target
	if err != nil {
		return false, permanent(err)
	}

	if err := f.copyChunks(out, resp.Body); err != nil {
		_ = out.Close()
		return true, err
	}
	if err := out.Close(); err != nil {
		return true, permanent(err)
	}
	return true, nil
}

// copyChunks streams src into dst in chunkSize pieces.
// Read failures are transient; write failures are not.
func (f *Fetcher) copyChunks(dst io.Writer, src io.Reader) error {
	buf := make([]byte, f.chunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return permanent(werr)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return transient(rerr)
		}
	}
}

// validateURL accepts absolute http(s) URLs with a host.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// attemptError marks an attempt failure as retryable or not.
type attemptError struct {
	err       error
	retryable bool
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

func transient(err error) error { return &attemptError{err: err, retryable: true} }
func permanent(err error) error { return &attemptError{err: err, retryable: false} }

// statusError is an HTTP error status.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "unexpected HTTP status " + e.status }

// retryable reports whether the status is worth another attempt.
func (e *statusError) retryable() bool {
	switch e.code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return e.code >= http.StatusInternalServerError
}

// isTransient classifies an attempt error.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var ae *attemptError
	if errors.As(err, &ae) {
		return ae.retryable
	}
	return false
}
