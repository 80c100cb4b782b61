// Package h264writer streams raw frames to an ffmpeg subprocess that
// produces an H.264 MP4. This is the primary raw-artifact writer; when
// ffmpeg is not installed the sequencer falls back to the MJPEG writer.
package h264writer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/user/slidecast/pkg/ports"
)

// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpeg executable not found")

// ErrEncoderUnavailable is returned when the located ffmpeg binary was
// built without the libx264 encoder.
var ErrEncoderUnavailable = errors.New("ffmpeg has no libx264 encoder")

// Opener opens H.264 frame writers backed by ffmpeg.
type Opener struct {
	// FFmpegPath overrides binary discovery when set.
	FFmpegPath string

	// listEncoders overrides the capability probe in tests.
	listEncoders func(ffmpegPath string) ([]byte, error)

	probeOnce sync.Once
	probeErr  error
}

// NewOpener creates an Opener that locates ffmpeg via PATH and common
// install locations.
func NewOpener() *Opener {
	return &Opener{}
}

// Codec returns the codec identifier.
func (o *Opener) Codec() string {
	return "h264"
}

// Open starts an ffmpeg process reading raw RGBA frames from stdin.
func (o *Opener) Open(path string, width, height int, fps float64) (ports.FrameWriter, error) {
	ffmpegPath := o.FFmpegPath
	if ffmpegPath == "" {
		found, err := findFFmpeg()
		if err != nil {
			return nil, err
		}
		ffmpegPath = found
	}

	// A binary without libx264 starts fine and only fails once frames
	// arrive, too late for the writer fallback to engage. Verify the
	// encoder exists before committing to this writer.
	if err := o.checkEncoder(ffmpegPath); err != nil {
		return nil, err
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.2f", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		path,
	}

	w := &Writer{
		width:  width,
		height: height,
	}

	w.cmd = exec.Command(ffmpegPath, args...)
	w.cmd.Stderr = &w.stderr

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	w.stdin = stdin

	if err := w.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return w, nil
}

// checkEncoder verifies the binary carries the libx264 encoder. The
// probe runs once per Opener; its verdict is cached for later Opens.
func (o *Opener) checkEncoder(ffmpegPath string) error {
	o.probeOnce.Do(func() {
		probe := o.listEncoders
		if probe == nil {
			probe = listEncoders
		}

		out, err := probe(ffmpegPath)
		if err != nil {
			o.probeErr = fmt.Errorf("list encoders: %w", err)
			return
		}
		if !bytes.Contains(out, []byte("libx264")) {
			o.probeErr = ErrEncoderUnavailable
		}
	})
	return o.probeErr
}

func listEncoders(ffmpegPath string) ([]byte, error) {
	return exec.Command(ffmpegPath, "-hide_banner", "-encoders").Output()
}

// findFFmpeg searches for ffmpeg in PATH and common locations.
func findFFmpeg() (string, error) {
	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// Writer implements ports.FrameWriter over an ffmpeg stdin pipe.
type Writer struct {
	width  int
	height int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	closed bool
}

// WriteFrame converts the frame to RGBA and pipes it to ffmpeg.
func (w *Writer) WriteFrame(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stdin == nil || w.closed {
		return errors.New("writer closed")
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Dx() != w.width || rgba.Bounds().Dy() != w.height {
		rgba = image.NewRGBA(image.Rect(0, 0, w.width, w.height))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	if _, err := w.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close signals end of input and waits for ffmpeg to finish the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.stdin.Close()
	w.stdin = nil

	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, w.stderr.String())
	}
	return nil
}

var (
	_ ports.FrameWriterOpener = (*Opener)(nil)
	_ ports.FrameWriter       = (*Writer)(nil)
)
