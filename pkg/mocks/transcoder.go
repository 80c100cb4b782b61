package mocks

import (
	"context"
	"sync"

	"github.com/user/slidecast/pkg/ports"
)

// Transcoder is a mock implementation of ports.Transcoder that records
// every invocation.
type Transcoder struct {
	mu    sync.Mutex
	calls [][]string

	TranscodeFunc func(ctx context.Context, args []string) error
	AvailableFunc func() bool
}

// NewTranscoder creates a new mock Transcoder that succeeds on every
// invocation.
func NewTranscoder() *Transcoder {
	return &Transcoder{}
}

func (m *Transcoder) Transcode(ctx context.Context, args []string) error {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), args...))
	m.mu.Unlock()
	if m.TranscodeFunc != nil {
		return m.TranscodeFunc(ctx, args)
	}
	return nil
}

func (m *Transcoder) Available() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

// Calls returns the recorded argument lists in invocation order.
func (m *Transcoder) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Prober is a mock implementation of ports.Prober.
type Prober struct {
	DurationFunc   func(ctx context.Context, path string) (float64, error)
	DimensionsFunc func(ctx context.Context, path string) (int, int, error)
}

// NewProber creates a new mock Prober reporting a 10 second 1080x1920
// portrait stream.
func NewProber() *Prober {
	return &Prober{}
}

func (m *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if m.DurationFunc != nil {
		return m.DurationFunc(ctx, path)
	}
	return 10.0, nil
}

func (m *Prober) Dimensions(ctx context.Context, path string) (int, int, error) {
	if m.DimensionsFunc != nil {
		return m.DimensionsFunc(ctx, path)
	}
	return 1080, 1920, nil
}

var (
	_ ports.Transcoder = (*Transcoder)(nil)
	_ ports.Prober     = (*Prober)(nil)
)
