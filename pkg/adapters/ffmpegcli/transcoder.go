// Package ffmpegcli drives the external ffmpeg/ffprobe binaries as the
// encode and probe boundary.
package ffmpegcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/user/slidecast/pkg/ports"
)

// Transcoder implements ports.Transcoder using the ffmpeg CLI.
type Transcoder struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewTranscoder creates a new Transcoder.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewTranscoder(ffmpegPath string) *Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Transcoder{ffmpegPath: ffmpegPath}
}

// Available reports whether the ffmpeg binary can be invoked.
func (t *Transcoder) Available() bool {
	cmd := exec.Command(t.ffmpegPath, "-version")
	return cmd.Run() == nil
}

// Transcode executes ffmpeg with the given arguments. A non-zero exit
// status returns a *ports.ExecError carrying the captured stderr.
func (t *Transcoder) Transcode(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &ports.ExecError{
			Name:   t.ffmpegPath,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

var _ ports.Transcoder = (*Transcoder)(nil)
