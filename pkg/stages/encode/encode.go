// Package encode implements the slideshow finalize cascade: re-encode
// the raw artifact (muxing background music when configured), fall back
// to moving the raw artifact as-is, and fail only when both rungs fail.
package encode

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
)

const finalArtifactName = "final_video.mp4"

// Stage finalizes a rendered slideshow into the destination file.
type Stage struct {
	transcoder ports.Transcoder
	fs         ports.FileSystem
	logger     ports.Logger
}

// NewStage creates an encode stage.
func NewStage(transcoder ports.Transcoder, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		transcoder: transcoder,
		fs:         fs,
		logger:     logger.WithComponent("encode"),
	}
}

// Execute runs the finalize cascade. On the degraded path the output is
// the raw artifact moved into place and the result says so; the caller
// still gets a playable file.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeOutput, error) {
	finalTmp := filepath.Join(input.WorkDir, finalArtifactName)
	args := s.encodeArgs(input, finalTmp)

	var attempts []pipeline.EncodeAttempt

	err := s.transcoder.Transcode(ctx, args)
	attempts = append(attempts, pipeline.EncodeAttempt{
		Stage:      pipeline.StagePrimary,
		Command:    "ffmpeg " + strings.Join(args, " "),
		Succeeded:  err == nil,
		Diagnostic: diagnostic(err),
	})
	if err == nil {
		if err := s.place(finalTmp, input.OutputPath); err != nil {
			return pipeline.EncodeOutput{Attempts: attempts}, err
		}
		return pipeline.EncodeOutput{
			OutputPath: input.OutputPath,
			Attempts:   attempts,
		}, nil
	}
	if ctx.Err() != nil {
		return pipeline.EncodeOutput{Attempts: attempts}, pipeline.ErrStopped
	}
	s.logger.Warn("Re-encode failed, saving raw video instead: %s", diagnostic(err))

	moveErr := s.place(input.RawArtifactPath, input.OutputPath)
	attempts = append(attempts, pipeline.EncodeAttempt{
		Stage:      pipeline.StageFallback,
		Command:    fmt.Sprintf("move %s -> %s", input.RawArtifactPath, input.OutputPath),
		Succeeded:  moveErr == nil,
		Diagnostic: diagnostic(moveErr),
	})
	if moveErr == nil {
		return pipeline.EncodeOutput{
			OutputPath: input.OutputPath,
			Attempts:   attempts,
			Degraded:   true,
			Message:    "Saved raw video without re-encoding (no background music)",
		}, nil
	}

	return pipeline.EncodeOutput{Attempts: attempts},
		fmt.Errorf("failed to save final video:\n%s", pipeline.CascadeDiagnostics(attempts))
}

// encodeArgs builds the primary re-encode command. With background
// music the audio track is muxed in and the output is trimmed to the
// shorter stream; without it the video is only normalized.
func (s *Stage) encodeArgs(input pipeline.EncodeInput, out string) []string {
	if input.BGMPath != "" {
		return []string{
			"-y",
			"-i", input.RawArtifactPath,
			"-i", input.BGMPath,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-preset", "medium",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
			out,
		}
	}
	return []string{
		"-y",
		"-i", input.RawArtifactPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "medium",
		out,
	}
}

// place moves an artifact to its destination, copying when a plain
// rename is not possible.
func (s *Stage) place(src, dst string) error {
	if err := s.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("save final video to %s: %w", dst, err)
	}
	return nil
}

// diagnostic extracts the most useful message from a cascade error,
// preferring captured encoder stderr over the Go error text.
func diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var execErr *ports.ExecError
	if errors.As(err, &execErr) {
		return execErr.Diagnostic()
	}
	return err.Error()
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeOutput] = (*Stage)(nil)
