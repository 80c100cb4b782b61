package ffmpegcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/user/slidecast/pkg/ports"
)

// Prober implements ports.Prober using the ffprobe CLI.
type Prober struct {
	ffprobePath string
}

// NewProber creates a new Prober.
// If ffprobePath is empty, it defaults to "ffprobe" (found via PATH).
func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath}
}

// Duration returns the duration in seconds of a media file.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%f", &duration); err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

// Dimensions returns the pixel geometry of the first video stream.
func (p *Prober) Dimensions(ctx context.Context, path string) (int, int, error) {
	out, err := p.run(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path,
	)
	if err != nil {
		return 0, 0, err
	}

	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("parse dimensions: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("no video stream in %s", path)
	}
	return w, h, nil
}

func (p *Prober) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return "", &ports.ExecError{
			Name:   p.ffprobePath,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

var _ ports.Prober = (*Prober)(nil)
