// Package mjpegwriter writes raw frames as Motion-JPEG in an MP4
// container, muxed in-process with mp4ff. It has no external
// dependencies, so it serves as the widely-supported fallback when the
// primary H.264 writer cannot be opened.
package mjpegwriter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/user/slidecast/pkg/ports"
)

// DefaultQuality is the JPEG quality used for each frame.
const DefaultQuality = 90

// Opener opens MJPEG frame writers.
type Opener struct {
	// Quality is the per-frame JPEG quality (1-100). Zero selects
	// DefaultQuality.
	Quality int
}

// NewOpener creates an Opener with default JPEG quality.
func NewOpener() *Opener {
	return &Opener{}
}

// Codec returns the codec identifier.
func (o *Opener) Codec() string {
	return "mjpeg"
}

// Open starts a new MJPEG container. Frames are buffered as encoded
// JPEG samples and the MP4 is assembled on Close.
func (o *Opener) Open(path string, width, height int, fps float64) (ports.FrameWriter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("invalid fps %f", fps)
	}

	// Fail now if the destination is not writable, not at Close.
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	probe, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	probe.Close()

	quality := o.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	return &Writer{
		path:    path,
		width:   width,
		height:  height,
		fps:     fps,
		quality: quality,
	}, nil
}

// Writer implements ports.FrameWriter by buffering JPEG samples.
type Writer struct {
	path    string
	width   int
	height  int
	fps     float64
	quality int

	samples [][]byte
	closed  bool
}

// WriteFrame JPEG-encodes one frame and appends it as a sample.
func (w *Writer) WriteFrame(img image.Image) error {
	if w.closed {
		return errors.New("writer closed")
	}
	bounds := img.Bounds()
	if bounds.Dx() != w.width || bounds.Dy() != w.height {
		return fmt.Errorf("frame is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), w.width, w.height)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: w.quality}); err != nil {
		return fmt.Errorf("encode JPEG: %w", err)
	}
	w.samples = append(w.samples, buf.Bytes())
	return nil
}

// Close assembles the MP4 container and writes it to the target path.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	data, err := w.buildMP4()
	if err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0644)
}

var (
	_ ports.FrameWriterOpener = (*Opener)(nil)
	_ ports.FrameWriter       = (*Writer)(nil)
)
