// Package convert implements per-item portrait-to-landscape conversion:
// a video-only render through the composed filter graph, then an audio
// mux cascade that degrades from full mixing down to a silent copy.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/slidecast/pkg/filtergraph"
	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
)

// Stage converts a single catalog item.
type Stage struct {
	transcoder ports.Transcoder
	fs         ports.FileSystem
	logger     ports.Logger
}

// NewStage creates a convert stage.
func NewStage(transcoder ports.Transcoder, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		transcoder: transcoder,
		fs:         fs,
		logger:     logger.WithComponent("convert"),
	}
}

// Execute converts one item. The video-only render is the only hard
// requirement; every audio rung that fails falls through to a simpler
// one, ending at a silent copy of the rendered video. The per-item
// scratch directory is removed on every path.
func (s *Stage) Execute(ctx context.Context, input pipeline.ConvertInput) (pipeline.ConvertOutput, error) {
	itemDir := filepath.Join(input.WorkDir, fmt.Sprintf("item_%04d", input.Item.OrdinalIndex))
	if err := s.fs.MkdirAll(itemDir); err != nil {
		return pipeline.ConvertOutput{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := s.fs.RemoveAll(itemDir); err != nil {
			s.logger.Debug("Failed to remove scratch dir %s: %v", itemDir, err)
		}
	}()

	tmpVideo := filepath.Join(itemDir, "video_only.mp4")
	args, err := s.renderArgs(input, tmpVideo)
	if err != nil {
		return pipeline.ConvertOutput{}, err
	}

	var attempts []pipeline.EncodeAttempt
	renderErr := s.transcoder.Transcode(ctx, args)
	attempts = append(attempts, attempt(pipeline.StagePrimary, args, renderErr))
	if renderErr != nil {
		if ctx.Err() != nil {
			return pipeline.ConvertOutput{Attempts: attempts}, pipeline.ErrStopped
		}
		return pipeline.ConvertOutput{Attempts: attempts},
			fmt.Errorf("render %s: %s", filepath.Base(input.Item.Path), diagnostic(renderErr))
	}

	out, err := s.muxAudio(ctx, input, tmpVideo, &attempts)
	if err != nil {
		return pipeline.ConvertOutput{Attempts: attempts}, err
	}
	out.Attempts = attempts
	return out, nil
}

// renderArgs builds the video-only render command. With a watermark the
// overlay chain needs the watermark image as a second input and a full
// filter_complex; otherwise a plain -vf suffices.
func (s *Stage) renderArgs(input pipeline.ConvertInput, out string) ([]string, error) {
	base, err := filtergraph.Compose(input.Graph, input.TargetWidth, input.TargetHeight)
	if err != nil {
		return nil, err
	}

	if wm := input.Graph.Watermark; wm != nil && wm.Path != "" {
		fc := filtergraph.WithWatermark(base, *wm, input.TargetWidth)
		return []string{
			"-y",
			"-i", input.Item.Path,
			"-i", wm.Path,
			"-filter_complex", fc,
			"-map", "0:v",
			"-c:v", "libx264",
			"-preset", "medium",
			"-pix_fmt", "yuv420p",
			"-an",
			out,
		}, nil
	}
	return []string{
		"-y",
		"-i", input.Item.Path,
		"-vf", base,
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-an",
		out,
	}, nil
}

// muxAudio runs the audio cascade over the rendered video-only file.
func (s *Stage) muxAudio(ctx context.Context, input pipeline.ConvertInput, tmpVideo string, attempts *[]pipeline.EncodeAttempt) (pipeline.ConvertOutput, error) {
	audio := input.Graph.Audio

	// Original audio dropped and no replacement track: the silent
	// render is the intended output, not a degraded one.
	if audio != nil && audio.BGMPath == "" && !audio.PreserveOriginal {
		if err := s.fs.Copy(tmpVideo, input.OutputPath); err != nil {
			return pipeline.ConvertOutput{}, fmt.Errorf("write %s: %w", input.OutputPath, err)
		}
		return pipeline.ConvertOutput{OutputPath: input.OutputPath}, nil
	}

	// No background music: carry the original audio over when present.
	if audio == nil || audio.BGMPath == "" {
		args := []string{
			"-y",
			"-i", tmpVideo,
			"-i", input.Item.Path,
			"-map", "0:v",
			"-map", "1:a?",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", "160k",
			input.OutputPath,
		}
		err := s.transcoder.Transcode(ctx, args)
		*attempts = append(*attempts, attempt(pipeline.StageFallback, args, err))
		if err == nil {
			return pipeline.ConvertOutput{OutputPath: input.OutputPath}, nil
		}
		if ctx.Err() != nil {
			return pipeline.ConvertOutput{}, pipeline.ErrStopped
		}
		return s.copySilent(input, tmpVideo, attempts, "original audio mux failed")
	}

	// Full mix: original audio plus looped or trimmed background track.
	// Skipped entirely when the original track is dropped.
	if audio.PreserveOriginal {
		mixArgs := s.mixArgs(input, tmpVideo, audio)
		mixErr := s.transcoder.Transcode(ctx, mixArgs)
		*attempts = append(*attempts, attempt(pipeline.StageFallback, mixArgs, mixErr))
		if mixErr == nil {
			return pipeline.ConvertOutput{OutputPath: input.OutputPath}, nil
		}
		if ctx.Err() != nil {
			return pipeline.ConvertOutput{}, pipeline.ErrStopped
		}
		s.logger.Warn("Audio mix failed, trying background music only: %s", diagnostic(mixErr))
	}

	// Background music only, no original audio. The bgm input is never
	// looped here: a looped input without a -shortest bound would make
	// the encode run forever.
	bgmArgs := []string{
		"-y",
		"-i", tmpVideo,
		"-i", audio.BGMPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
	}
	if audio.TrimToVideo {
		bgmArgs = append(bgmArgs, "-shortest")
	}
	bgmArgs = append(bgmArgs, input.OutputPath)

	err := s.transcoder.Transcode(ctx, bgmArgs)
	*attempts = append(*attempts, attempt(pipeline.StageFallback, bgmArgs, err))
	if err == nil {
		out := pipeline.ConvertOutput{OutputPath: input.OutputPath}
		if audio.PreserveOriginal {
			out.Degraded = true
			out.Message = "Mixed audio unavailable, used background music only"
		}
		return out, nil
	}
	if ctx.Err() != nil {
		return pipeline.ConvertOutput{}, pipeline.ErrStopped
	}
	return s.copySilent(input, tmpVideo, attempts, "all audio strategies failed")
}

// mixArgs builds the amix command blending original audio with the
// background track. Looping applies -stream_loop to the bgm input;
// trimming bounds the output to the video length.
func (s *Stage) mixArgs(input pipeline.ConvertInput, tmpVideo string, audio *pipeline.AudioSpec) []string {
	args := []string{
		"-y",
		"-i", tmpVideo,
		"-i", input.Item.Path,
	}
	if audio.LoopIfShorter {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", audio.BGMPath,
		"-filter_complex", filtergraph.MixAudio(audio.Volume),
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
	)
	if audio.TrimToVideo {
		args = append(args, "-shortest")
	}
	return append(args, input.OutputPath)
}

// copySilent is the terminal rung: deliver the rendered video with no
// audio track at all.
func (s *Stage) copySilent(input pipeline.ConvertInput, tmpVideo string, attempts *[]pipeline.EncodeAttempt, reason string) (pipeline.ConvertOutput, error) {
	err := s.fs.Copy(tmpVideo, input.OutputPath)
	*attempts = append(*attempts, pipeline.EncodeAttempt{
		Stage:      pipeline.StageLastResort,
		Command:    fmt.Sprintf("copy %s -> %s", tmpVideo, input.OutputPath),
		Succeeded:  err == nil,
		Diagnostic: diagnostic(err),
	})
	if err != nil {
		return pipeline.ConvertOutput{},
			fmt.Errorf("convert %s:\n%s", filepath.Base(input.Item.Path), pipeline.CascadeDiagnostics(*attempts))
	}
	s.logger.Warn("Saved %s without audio (%s)", filepath.Base(input.OutputPath), reason)
	return pipeline.ConvertOutput{
		OutputPath: input.OutputPath,
		Degraded:   true,
		Message:    "Saved without audio: " + reason,
	}, nil
}

func attempt(stage pipeline.AttemptStage, args []string, err error) pipeline.EncodeAttempt {
	return pipeline.EncodeAttempt{
		Stage:      stage,
		Command:    "ffmpeg " + strings.Join(args, " "),
		Succeeded:  err == nil,
		Diagnostic: diagnostic(err),
	}
}

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

var _ pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertOutput] = (*Stage)(nil)
