// Package slidecast provides a high-level API for building slideshow
// videos from image folders and converting portrait footage to
// landscape.
package slidecast

import (
	"context"

	"github.com/user/slidecast/pkg/adapters/ffmpegcli"
	"github.com/user/slidecast/pkg/adapters/ggrenderer"
	"github.com/user/slidecast/pkg/adapters/logger"
	"github.com/user/slidecast/pkg/adapters/osfilesystem"
	"github.com/user/slidecast/pkg/adapters/progress"
	"github.com/user/slidecast/pkg/adapters/smartwriter"
	"github.com/user/slidecast/pkg/orchestrator"
	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
	"github.com/user/slidecast/pkg/stages/convert"
	"github.com/user/slidecast/pkg/stages/encode"
	"github.com/user/slidecast/pkg/stages/render"
	"github.com/user/slidecast/pkg/stages/scan"
)

// Options customizes the assembled pipeline. Zero values pick sensible
// defaults: console logging, logged progress and PATH-resolved tools.
type Options struct {
	Logger      ports.Logger
	Sink        ports.ProgressSink
	FFmpegPath  string
	FFprobePath string
}

// App is the assembled pipeline behind the public API.
type App struct {
	orch   *orchestrator.Orchestrator
	logger ports.Logger
}

// New wires adapters and stages into a ready-to-run App.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = defaultLogger()
	}
	sink := opts.Sink
	if sink == nil {
		sink = progress.NewConsole(log)
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	transcoder := ffmpegcli.NewTranscoder(opts.FFmpegPath)
	prober := ffmpegcli.NewProber(opts.FFprobePath)
	opener := smartwriter.New(log, opts.FFmpegPath)

	scanStage := scan.NewStage(prober, log)
	renderStage := render.NewStage(fs, renderer, opener, sink, log)
	encodeStage := encode.NewStage(transcoder, fs, log)
	convertStage := convert.NewStage(transcoder, fs, log)

	orch := orchestrator.New(
		scanStage,
		renderStage,
		encodeStage,
		convertStage,
		scanStage,
		fs,
		sink,
		log,
	)

	return &App{orch: orch, logger: log}
}

func defaultLogger() ports.Logger {
	return logger.NewConsole(ports.LevelInfo)
}

// CreateSlideshow runs the complete slideshow pipeline and blocks until
// the terminal result.
func (a *App) CreateSlideshow(ctx context.Context, cfg orchestrator.SlideshowConfig) pipeline.JobResult {
	return a.orch.RunSlideshow(ctx, cfg)
}

// ConvertPortrait runs the conversion batch and blocks until the
// terminal result.
func (a *App) ConvertPortrait(ctx context.Context, cfg orchestrator.ConvertConfig) pipeline.JobResult {
	return a.orch.RunConvert(ctx, cfg)
}

// StartSlideshow runs the slideshow pipeline on a worker goroutine.
func (a *App) StartSlideshow(ctx context.Context, cfg orchestrator.SlideshowConfig) (<-chan pipeline.JobResult, error) {
	return a.orch.StartSlideshow(ctx, cfg)
}

// StartConvert runs the conversion batch on a worker goroutine.
func (a *App) StartConvert(ctx context.Context, cfg orchestrator.ConvertConfig) (<-chan pipeline.JobResult, error) {
	return a.orch.StartConvert(ctx, cfg)
}
