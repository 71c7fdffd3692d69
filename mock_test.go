package doctools

import (
	"context"
	"sync"
	"sync/atomic"
)

// mockRasterizer records calls and returns canned output.
type mockRasterizer struct {
	mu       sync.Mutex
	data     []byte
	err      error
	calls    []rasterCall
	closed   atomic.Bool
	closeErr error
	// inspect, when set, runs against the HTML file before it is removed.
	inspect func(filePath string)
}

type rasterCall struct {
	FilePath string
	Opts     rasterOptions
}

func (m *mockRasterizer) Rasterize(ctx context.Context, filePath string, opts *rasterOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var o rasterOptions
	if opts != nil {
		o = *opts
	}
	m.calls = append(m.calls, rasterCall{FilePath: filePath, Opts: o})
	if m.inspect != nil {
		m.inspect(filePath)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *mockRasterizer) Close() error {
	m.closed.Store(true)
	return m.closeErr
}

func (m *mockRasterizer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockRasterizer) lastCall() rasterCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return rasterCall{}
	}
	return m.calls[len(m.calls)-1]
}

// newMockPool returns a single-slot pool backed by m.
func newMockPool(m *mockRasterizer) *RasterizerPool {
	return newRasterizerPool(1, func() htmlRasterizer { return m })
}
