package doctools

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one browser is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// RasterizerPool manages browser instances shared by the table renderer and
// the slide inspector. Each instance is used by one caller at a time.
// Instances are created lazily on first acquire to avoid startup delay.
type RasterizerPool struct {
	size    int
	newFn   func() htmlRasterizer
	all     []htmlRasterizer
	idle    chan htmlRasterizer
	mu      sync.Mutex
	created int
	closed  bool
}

// NewRasterizerPool creates a pool with capacity for n browsers.
func NewRasterizerPool(n int, opts ...RasterOption) *RasterizerPool {
	cfg := rasterConfig{timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newRasterizerPool(n, func() htmlRasterizer { return newRodRasterizer(cfg) })
}

func newRasterizerPool(n int, newFn func() htmlRasterizer) *RasterizerPool {
	if n < 1 {
		n = 1
	}
	return &RasterizerPool{
		size:  n,
		newFn: newFn,
		all:   make([]htmlRasterizer, 0, n),
		idle:  make(chan htmlRasterizer, n),
	}
}

// acquire gets a rasterizer, creating one if capacity allows.
// Blocks until one is released or ctx is done.
func (p *RasterizerPool) acquire(ctx context.Context) (htmlRasterizer, error) {
	select {
	case r, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		r := p.newFn()
		p.all = append(p.all, r)
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	select {
	case r, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release returns a rasterizer to the pool.
// The send happens under the lock so it cannot race with Close; it never
// blocks because at most size instances exist.
func (p *RasterizerPool) release(r htmlRasterizer) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.idle <- r
}

// rasterize renders filePath with a pooled rasterizer.
func (p *RasterizerPool) rasterize(ctx context.Context, filePath string, opts *rasterOptions) ([]byte, error) {
	r, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.release(r)
	return r.Rasterize(ctx, filePath, opts)
}

// Close releases all browser resources.
// Returns an aggregated error if multiple browsers fail to close.
func (p *RasterizerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	all := p.all
	p.mu.Unlock()

	var errs []error
	for _, r := range all {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *RasterizerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the browser pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
