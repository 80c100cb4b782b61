package mocks

import (
	"image"
	"sync"

	"github.com/user/slidecast/pkg/ports"
)

// FrameWriterOpener is a mock implementation of ports.FrameWriterOpener
// handing out recording FrameWriters.
type FrameWriterOpener struct {
	mu      sync.Mutex
	writers []*FrameWriter

	OpenFunc  func(path string, width, height int, fps float64) (ports.FrameWriter, error)
	CodecFunc func() string
}

// NewFrameWriterOpener creates a new mock opener.
func NewFrameWriterOpener() *FrameWriterOpener {
	return &FrameWriterOpener{}
}

func (m *FrameWriterOpener) Open(path string, width, height int, fps float64) (ports.FrameWriter, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(path, width, height, fps)
	}
	w := &FrameWriter{Path: path, Width: width, Height: height, FPS: fps}
	m.mu.Lock()
	m.writers = append(m.writers, w)
	m.mu.Unlock()
	return w, nil
}

func (m *FrameWriterOpener) Codec() string {
	if m.CodecFunc != nil {
		return m.CodecFunc()
	}
	return "mock"
}

// Writers returns every writer handed out so far.
func (m *FrameWriterOpener) Writers() []*FrameWriter {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*FrameWriter, len(m.writers))
	copy(out, m.writers)
	return out
}

// FrameWriter is a mock implementation of ports.FrameWriter that keeps
// the written frames.
type FrameWriter struct {
	Path   string
	Width  int
	Height int
	FPS    float64

	mu     sync.Mutex
	frames []image.Image
	closed bool

	WriteFrameFunc func(img image.Image) error
	CloseFunc      func() error
}

func (m *FrameWriter) WriteFrame(img image.Image) error {
	if m.WriteFrameFunc != nil {
		return m.WriteFrameFunc(img)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, img)
	return nil
}

func (m *FrameWriter) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FrameCount returns the number of frames written so far.
func (m *FrameWriter) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Frames returns the written frames.
func (m *FrameWriter) Frames() []image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]image.Image, len(m.frames))
	copy(out, m.frames)
	return out
}

// Closed reports whether Close was called.
func (m *FrameWriter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var (
	_ ports.FrameWriterOpener = (*FrameWriterOpener)(nil)
	_ ports.FrameWriter       = (*FrameWriter)(nil)
)
