// Package render implements the slideshow frame sequencer: it walks the
// catalog in order, emits stable and cross-fade frames for each item
// and streams them into a frame writer.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/user/slidecast/pkg/compositor"
	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
)

// rawArtifactName is the intermediate file inside the job work dir.
const rawArtifactName = "raw_video.mp4"

// Stage renders the frame sequence for a slideshow job.
type Stage struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	opener   ports.FrameWriterOpener
	sink     ports.ProgressSink
	logger   ports.Logger
}

// NewStage creates a render stage.
func NewStage(
	fs ports.FileSystem,
	renderer ports.Renderer,
	opener ports.FrameWriterOpener,
	sink ports.ProgressSink,
	logger ports.Logger,
) *Stage {
	return &Stage{
		fs:       fs,
		renderer: renderer,
		opener:   opener,
		sink:     sink,
		logger:   logger.WithComponent("render"),
	}
}

// Execute writes the full frame sequence to the raw intermediate
// artifact. Each readable item contributes StableFrames copies of its
// fitted frame followed by CrossfadeFrames blended frames toward the
// next item (or toward black after the last one). Unreadable items are
// skipped but still advance the frame counter, so progress percentages
// stay monotonic against the planned total.
func (s *Stage) Execute(ctx context.Context, input pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
	spec := input.Spec
	if len(input.Items) == 0 {
		return pipeline.RenderFramesResult{}, pipeline.ErrNoItems
	}
	if spec.TargetWidth <= 0 || spec.TargetHeight <= 0 {
		return pipeline.RenderFramesResult{}, fmt.Errorf("invalid target geometry %dx%d", spec.TargetWidth, spec.TargetHeight)
	}
	if spec.FPS <= 0 || spec.FramesPerItem <= 0 {
		return pipeline.RenderFramesResult{}, fmt.Errorf("invalid timing: fps=%d frames-per-item=%d", spec.FPS, spec.FramesPerItem)
	}

	rawPath := filepath.Join(input.WorkDir, rawArtifactName)
	writer, err := s.opener.Open(rawPath, spec.TargetWidth, spec.TargetHeight, float64(spec.FPS))
	if err != nil {
		return pipeline.RenderFramesResult{}, err
	}
	s.logger.Info("Rendering frames...")
	s.logger.Debug("Frame writer codec: %s", s.opener.Codec())

	comp := compositor.New(s.renderer)
	black := comp.SolidFrame(spec.TargetWidth, spec.TargetHeight, color.Black)

	total := len(input.Items) * spec.FramesPerItem
	// Progress is throttled to roughly twice per second of output.
	interval := spec.FPS / 2
	if interval < 1 {
		interval = 1
	}

	crossfade := spec.CrossfadeFrames
	if crossfade < 0 {
		crossfade = 0
	}
	stable := spec.StableFrames()

	written := 0
	skipped := 0
	emit := func(frame *image.RGBA) error {
		if err := ctx.Err(); err != nil {
			return pipeline.ErrStopped
		}
		if err := writer.WriteFrame(frame); err != nil {
			return fmt.Errorf("write frame %d: %w", written, err)
		}
		written++
		if written%interval == 0 {
			s.report(written, total)
		}
		return nil
	}

	// current holds the fitted frame of the item being shown; it is
	// carried over from the previous iteration's cross-fade target so
	// each file is decoded at most once.
	var current *image.RGBA
	for i, item := range input.Items {
		if current == nil {
			current = s.fitted(item, spec)
		}
		if current == nil {
			// Unreadable: drop the item's frame slots but keep the
			// counter aligned with the planned total.
			s.logger.Warn("Skipping unreadable item %d/%d", i+1, len(input.Items))
			written += spec.FramesPerItem
			skipped++
			s.report(written, total)
			continue
		}

		for f := 0; f < stable; f++ {
			if err := emit(current); err != nil {
				return s.abort(writer, err)
			}
		}

		next := black
		if i+1 < len(input.Items) {
			if fitted := s.fitted(input.Items[i+1], spec); fitted != nil {
				next = fitted
			}
		}
		denom := crossfade
		if denom < 1 {
			denom = 1
		}
		for f := 0; f < crossfade; f++ {
			alpha := float64(f+1) / float64(denom)
			if err := emit(compositor.Blend(current, next, alpha)); err != nil {
				return s.abort(writer, err)
			}
		}

		if next == black {
			current = nil
		} else {
			current = next
		}
	}

	if err := writer.Close(); err != nil {
		return pipeline.RenderFramesResult{}, fmt.Errorf("finalize raw video: %w", err)
	}
	s.report(written, total)

	return pipeline.RenderFramesResult{
		RawArtifactPath: rawPath,
		FramesWritten:   written,
		SkippedItems:    skipped,
	}, nil
}

// fitted decodes and zoom-crops one item, or nil when the file cannot
// be decoded. Decode failures are per-item, never fatal.
func (s *Stage) fitted(item pipeline.MediaItem, spec pipeline.RenderSpec) *image.RGBA {
	if !item.Readable {
		return nil
	}
	data, err := s.fs.ReadFile(item.Path)
	if err != nil {
		return nil
	}
	img, err := s.renderer.DecodeImage(data)
	if err != nil {
		return nil
	}
	comp := compositor.New(s.renderer)
	return comp.FitFrame(img, spec.TargetWidth, spec.TargetHeight)
}

func (s *Stage) report(written, total int) {
	if total <= 0 {
		return
	}
	pct := written * 100 / total
	if pct > 100 {
		pct = 100
	}
	s.sink.Progress(pct, fmt.Sprintf("Rendering frames %d/%d", written, total))
}

func (s *Stage) abort(writer ports.FrameWriter, err error) (pipeline.RenderFramesResult, error) {
	_ = writer.Close()
	return pipeline.RenderFramesResult{}, err
}

var _ pipeline.Stage[pipeline.RenderFramesInput, pipeline.RenderFramesResult] = (*Stage)(nil)
