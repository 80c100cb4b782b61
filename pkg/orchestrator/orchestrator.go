// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
)

// workDirPrefix names the per-job scratch directory.
const workDirPrefix = "slidecast_"

// SlideshowConfig contains all configuration for one slideshow job.
type SlideshowConfig struct {
	// Input
	Folder     string
	OutputPath string

	// Geometry. Zero width/height means "use the first readable
	// image's native size".
	TargetWidth  int
	TargetHeight int

	// Timing
	FPS             int
	FramesPerItem   int
	CrossfadeFrames int

	// Ordering
	Shuffle     bool
	ShuffleSeed int64

	// Audio
	BGMPath string
}

// DefaultSlideshowConfig returns a SlideshowConfig with default values.
func DefaultSlideshowConfig() SlideshowConfig {
	return SlideshowConfig{
		FPS:             30,
		FramesPerItem:   90,
		CrossfadeFrames: 15,
	}
}

// ConvertConfig contains all configuration for one conversion batch.
type ConvertConfig struct {
	// Input: explicit paths, or a folder to scan when Paths is empty.
	Paths  []string
	Folder string

	// Output
	OutputDir string
	Suffix    string // appended to the base name, default "_landscape"

	// Geometry
	TargetWidth  int
	TargetHeight int

	// Selection
	PortraitOnly bool

	// Composition
	Graph pipeline.FilterGraphSpec
}

// DefaultConvertConfig returns a ConvertConfig with default values.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		Suffix:       "_landscape",
		TargetWidth:  1920,
		TargetHeight: 1080,
		PortraitOnly: true,
		Graph: pipeline.FilterGraphSpec{
			Mode:           pipeline.ModeBlur,
			BlurStrength:   20,
			LetterboxColor: "#000000",
		},
	}
}

// ItemResolver probes a single explicit path into a catalog item.
type ItemResolver interface {
	Resolve(ctx context.Context, path string, kind pipeline.MediaKind) pipeline.MediaItem
}

// Orchestrator coordinates the execution of all pipeline stages. At
// most one job runs at a time; starting a second one while the first is
// in flight fails.
type Orchestrator struct {
	scanStage    pipeline.Stage[pipeline.ScanInput, pipeline.ScanResult]
	renderStage  pipeline.Stage[pipeline.RenderFramesInput, pipeline.RenderFramesResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeOutput]
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertOutput]
	resolver     ItemResolver
	fs           ports.FileSystem
	sink         ports.ProgressSink
	logger       ports.Logger

	running atomic.Bool
}

// New creates a new Orchestrator.
func New(
	scanStage pipeline.Stage[pipeline.ScanInput, pipeline.ScanResult],
	renderStage pipeline.Stage[pipeline.RenderFramesInput, pipeline.RenderFramesResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeOutput],
	convertStage pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertOutput],
	resolver ItemResolver,
	fs ports.FileSystem,
	sink ports.ProgressSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		scanStage:    scanStage,
		renderStage:  renderStage,
		encodeStage:  encodeStage,
		convertStage: convertStage,
		resolver:     resolver,
		fs:           fs,
		sink:         sink,
		logger:       logger,
	}
}

// RunSlideshow executes the complete slideshow pipeline and delivers
// the terminal result to the progress sink exactly once.
func (o *Orchestrator) RunSlideshow(ctx context.Context, config SlideshowConfig) pipeline.JobResult {
	if !o.running.CompareAndSwap(false, true) {
		return o.finish(pipeline.JobResult{Message: "another job is already running"})
	}
	defer o.running.Store(false)
	return o.finish(o.runSlideshow(ctx, config))
}

// StartSlideshow runs the slideshow pipeline on a worker goroutine and
// returns a channel that delivers the terminal result.
func (o *Orchestrator) StartSlideshow(ctx context.Context, config SlideshowConfig) (<-chan pipeline.JobResult, error) {
	if o.running.Load() {
		return nil, fmt.Errorf("another job is already running")
	}
	ch := make(chan pipeline.JobResult, 1)
	go func() {
		ch <- o.RunSlideshow(ctx, config)
	}()
	return ch, nil
}

func (o *Orchestrator) runSlideshow(ctx context.Context, config SlideshowConfig) pipeline.JobResult {
	o.logger.Info("Starting slideshow job")

	scan, err := o.scanStage.Execute(ctx, pipeline.ScanInput{
		Folder:  config.Folder,
		Kind:    pipeline.KindImage,
		Shuffle: config.Shuffle,
		Seed:    config.ShuffleSeed,
	})
	if err != nil {
		return o.fail(ctx, "scan", err)
	}
	if config.Shuffle {
		o.logger.Info("Shuffled %d items with seed %d", len(scan.Items), scan.Seed)
	}

	width, height := config.TargetWidth, config.TargetHeight
	if width <= 0 || height <= 0 {
		width, height = firstReadableSize(scan.Items)
		if width == 0 {
			return o.fail(ctx, "scan", pipeline.ErrNoItems)
		}
	}
	// Even dimensions keep yuv420p encoders happy.
	width -= width % 2
	height -= height % 2

	workDir, err := o.fs.MkdirTemp(workDirPrefix)
	if err != nil {
		return o.fail(ctx, "workdir", err)
	}
	defer o.cleanup(workDir)

	rendered, err := o.renderStage.Execute(ctx, pipeline.RenderFramesInput{
		Items: scan.Items,
		Spec: pipeline.RenderSpec{
			TargetWidth:     width,
			TargetHeight:    height,
			FPS:             config.FPS,
			FramesPerItem:   config.FramesPerItem,
			CrossfadeFrames: config.CrossfadeFrames,
			ShuffleEnabled:  config.Shuffle,
			ShuffleSeed:     scan.Seed,
		},
		WorkDir: workDir,
	})
	if err != nil {
		return o.fail(ctx, "render", err)
	}
	if rendered.SkippedItems == len(scan.Items) {
		return o.fail(ctx, "render", pipeline.ErrNoItems)
	}
	o.logger.Info("Rendered %d frames (%d items skipped)", rendered.FramesWritten, rendered.SkippedItems)

	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		RawArtifactPath: rendered.RawArtifactPath,
		OutputPath:      config.OutputPath,
		BGMPath:         config.BGMPath,
		WorkDir:         workDir,
	})
	if err != nil {
		return o.fail(ctx, "encode", err)
	}

	message := "Completed"
	if encoded.Degraded {
		message = encoded.Message
	}
	o.sink.Progress(100, message)
	return pipeline.JobResult{
		OutputPath: encoded.OutputPath,
		Succeeded:  true,
		Message:    message,
	}
}

// RunConvert executes the conversion batch. Per-item failures are
// logged and counted but do not stop the batch; the job fails only
// when nothing could be converted.
func (o *Orchestrator) RunConvert(ctx context.Context, config ConvertConfig) pipeline.JobResult {
	if !o.running.CompareAndSwap(false, true) {
		return o.finish(pipeline.JobResult{Message: "another job is already running"})
	}
	defer o.running.Store(false)
	return o.finish(o.runConvert(ctx, config))
}

// StartConvert runs the conversion batch on a worker goroutine.
func (o *Orchestrator) StartConvert(ctx context.Context, config ConvertConfig) (<-chan pipeline.JobResult, error) {
	if o.running.Load() {
		return nil, fmt.Errorf("another job is already running")
	}
	ch := make(chan pipeline.JobResult, 1)
	go func() {
		ch <- o.RunConvert(ctx, config)
	}()
	return ch, nil
}

func (o *Orchestrator) runConvert(ctx context.Context, config ConvertConfig) pipeline.JobResult {
	o.logger.Info("Starting conversion job")

	items, err := o.convertCatalog(ctx, config)
	if err != nil {
		return o.fail(ctx, "scan", err)
	}

	selected := items[:0]
	for _, item := range items {
		if !item.Readable {
			o.logger.Warn("Skipping unreadable file %s", filepath.Base(item.Path))
			continue
		}
		if config.PortraitOnly && !item.Portrait() {
			o.logger.Debug("Skipping non-portrait file %s", filepath.Base(item.Path))
			continue
		}
		selected = append(selected, item)
	}
	if len(selected) == 0 {
		return o.fail(ctx, "scan", pipeline.ErrNoItems)
	}

	if config.OutputDir != "" {
		if err := o.fs.MkdirAll(config.OutputDir); err != nil {
			return o.fail(ctx, "output dir", err)
		}
	}
	workDir, err := o.fs.MkdirTemp(workDirPrefix)
	if err != nil {
		return o.fail(ctx, "workdir", err)
	}
	defer o.cleanup(workDir)

	converted := 0
	degraded := 0
	lastOutput := ""
	for i, item := range selected {
		o.sink.Progress(i*100/len(selected), fmt.Sprintf("Converting %d/%d: %s", i+1, len(selected), filepath.Base(item.Path)))

		out, err := o.convertStage.Execute(ctx, pipeline.ConvertInput{
			Item:         item,
			Graph:        config.Graph,
			TargetWidth:  config.TargetWidth,
			TargetHeight: config.TargetHeight,
			OutputPath:   o.outputPath(config, item),
			WorkDir:      workDir,
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrStopped) || ctx.Err() != nil {
				return pipeline.JobResult{Stopped: true, Message: "Stopped by request"}
			}
			o.logger.Error("Failed to convert %s: %s", filepath.Base(item.Path), err)
			continue
		}
		converted++
		lastOutput = out.OutputPath
		if out.Degraded {
			degraded++
			o.logger.Warn("%s: %s", filepath.Base(item.Path), out.Message)
		}
	}

	if converted == 0 {
		o.sink.Progress(100, "No files converted")
		return pipeline.JobResult{Message: fmt.Sprintf("failed to convert all %d files", len(selected))}
	}

	message := fmt.Sprintf("Converted %d/%d files", converted, len(selected))
	if degraded > 0 {
		message += fmt.Sprintf(" (%d with degraded audio)", degraded)
	}
	o.sink.Progress(100, message)
	return pipeline.JobResult{
		OutputPath: lastOutput,
		Succeeded:  true,
		Message:    message,
	}
}

// convertCatalog builds the item list either from explicit paths or by
// scanning a folder.
func (o *Orchestrator) convertCatalog(ctx context.Context, config ConvertConfig) ([]pipeline.MediaItem, error) {
	if len(config.Paths) > 0 {
		items := make([]pipeline.MediaItem, 0, len(config.Paths))
		for i, path := range config.Paths {
			item := o.resolver.Resolve(ctx, path, pipeline.KindVideo)
			item.OrdinalIndex = i
			items = append(items, item)
		}
		return items, nil
	}

	scan, err := o.scanStage.Execute(ctx, pipeline.ScanInput{
		Folder: config.Folder,
		Kind:   pipeline.KindVideo,
	})
	if err != nil {
		return nil, err
	}
	return scan.Items, nil
}

// outputPath derives the destination file for one item, keeping the
// source base name with the configured suffix.
func (o *Orchestrator) outputPath(config ConvertConfig, item pipeline.MediaItem) string {
	base := filepath.Base(item.Path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + config.Suffix + ".mp4"
	dir := config.OutputDir
	if dir == "" {
		dir = filepath.Dir(item.Path)
	}
	return filepath.Join(dir, name)
}

// finish delivers the terminal result to the sink exactly once.
func (o *Orchestrator) finish(result pipeline.JobResult) pipeline.JobResult {
	switch {
	case result.Succeeded:
		o.logger.Info("Job completed: %s", result.Message)
	case result.Stopped:
		o.logger.Info("Stopped by request")
	default:
		o.logger.Error("Job failed: %s", result.Message)
	}
	o.sink.Done(result.Succeeded, result.Message)
	return result
}

// fail maps an error to the terminal result, distinguishing a caller
// cancellation from a real failure.
func (o *Orchestrator) fail(ctx context.Context, stage string, err error) pipeline.JobResult {
	if errors.Is(err, pipeline.ErrStopped) || ctx.Err() != nil {
		return pipeline.JobResult{Stopped: true, Message: "Stopped by request"}
	}
	return pipeline.JobResult{Message: fmt.Sprintf("%s: %s", stage, err)}
}

// cleanup removes the job scratch directory on every terminal path.
func (o *Orchestrator) cleanup(workDir string) {
	if err := o.fs.RemoveAll(workDir); err != nil {
		o.logger.Debug("Failed to remove work dir %s: %v", workDir, err)
	}
}

func firstReadableSize(items []pipeline.MediaItem) (int, int) {
	for _, item := range items {
		if item.Readable {
			return item.NativeWidth, item.NativeHeight
		}
	}
	return 0, 0
}
