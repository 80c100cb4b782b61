package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/slidecast/pkg/adapters/logger"
	"github.com/user/slidecast/pkg/mocks"
	"github.com/user/slidecast/pkg/pipeline"
)

type stubResolver struct {
	items map[string]pipeline.MediaItem
}

func (r *stubResolver) Resolve(ctx context.Context, path string, kind pipeline.MediaKind) pipeline.MediaItem {
	if item, ok := r.items[path]; ok {
		return item
	}
	return pipeline.MediaItem{Path: path, Kind: kind}
}

type fixture struct {
	scan     pipeline.StageFunc[pipeline.ScanInput, pipeline.ScanResult]
	render   pipeline.StageFunc[pipeline.RenderFramesInput, pipeline.RenderFramesResult]
	encode   pipeline.StageFunc[pipeline.EncodeInput, pipeline.EncodeOutput]
	convert  pipeline.StageFunc[pipeline.ConvertInput, pipeline.ConvertOutput]
	resolver *stubResolver
	fs       *mocks.FileSystem
	sink     *mocks.ProgressSink
}

func defaultItems() []pipeline.MediaItem {
	return []pipeline.MediaItem{
		{Path: "/in/a.png", OrdinalIndex: 0, NativeWidth: 1600, NativeHeight: 900, Readable: true},
		{Path: "/in/b.png", OrdinalIndex: 1, NativeWidth: 800, NativeHeight: 600, Readable: true},
	}
}

func newFixture() *fixture {
	f := &fixture{
		resolver: &stubResolver{items: map[string]pipeline.MediaItem{}},
		fs:       mocks.NewFileSystem(),
		sink:     mocks.NewProgressSink(),
	}
	f.scan = func(ctx context.Context, in pipeline.ScanInput) (pipeline.ScanResult, error) {
		return pipeline.ScanResult{Items: defaultItems(), Seed: in.Seed}, nil
	}
	f.render = func(ctx context.Context, in pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
		return pipeline.RenderFramesResult{
			RawArtifactPath: in.WorkDir + "/raw_video.mp4",
			FramesWritten:   len(in.Items) * in.Spec.FramesPerItem,
		}, nil
	}
	f.encode = func(ctx context.Context, in pipeline.EncodeInput) (pipeline.EncodeOutput, error) {
		return pipeline.EncodeOutput{OutputPath: in.OutputPath}, nil
	}
	f.convert = func(ctx context.Context, in pipeline.ConvertInput) (pipeline.ConvertOutput, error) {
		return pipeline.ConvertOutput{OutputPath: in.OutputPath}, nil
	}
	return f
}

func (f *fixture) build() *Orchestrator {
	return New(f.scan, f.render, f.encode, f.convert, f.resolver, f.fs, f.sink, logger.NewNoop())
}

func slideshowConfig() SlideshowConfig {
	cfg := DefaultSlideshowConfig()
	cfg.Folder = "/in"
	cfg.OutputPath = "/out/show.mp4"
	cfg.TargetWidth = 1280
	cfg.TargetHeight = 720
	return cfg
}

func TestRunSlideshowSuccess(t *testing.T) {
	f := newFixture()
	result := f.build().RunSlideshow(context.Background(), slideshowConfig())

	if !result.Succeeded {
		t.Fatalf("job failed: %s", result.Message)
	}
	if result.OutputPath != "/out/show.mp4" {
		t.Errorf("OutputPath = %s", result.OutputPath)
	}
	if f.sink.DoneCount() != 1 {
		t.Errorf("Done invoked %d times, want 1", f.sink.DoneCount())
	}
	if ok, _ := f.sink.Result(); !ok {
		t.Error("Done should report success")
	}

	updates := f.sink.Updates()
	if len(updates) == 0 || updates[len(updates)-1].Percent != 100 {
		t.Errorf("final progress should be 100, got %v", updates)
	}
}

func TestRunSlideshowUsesNativeSizeWhenUnset(t *testing.T) {
	f := newFixture()
	var gotSpec pipeline.RenderSpec
	f.render = func(ctx context.Context, in pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
		gotSpec = in.Spec
		return pipeline.RenderFramesResult{RawArtifactPath: "/raw"}, nil
	}

	cfg := slideshowConfig()
	cfg.TargetWidth = 0
	cfg.TargetHeight = 0
	f.build().RunSlideshow(context.Background(), cfg)

	// First readable item is 1600x900.
	if gotSpec.TargetWidth != 1600 || gotSpec.TargetHeight != 900 {
		t.Errorf("spec geometry = %dx%d, want 1600x900", gotSpec.TargetWidth, gotSpec.TargetHeight)
	}
}

func TestRunSlideshowForcesEvenDimensions(t *testing.T) {
	f := newFixture()
	var gotSpec pipeline.RenderSpec
	f.render = func(ctx context.Context, in pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
		gotSpec = in.Spec
		return pipeline.RenderFramesResult{RawArtifactPath: "/raw"}, nil
	}

	cfg := slideshowConfig()
	cfg.TargetWidth = 1281
	cfg.TargetHeight = 721
	f.build().RunSlideshow(context.Background(), cfg)

	if gotSpec.TargetWidth != 1280 || gotSpec.TargetHeight != 720 {
		t.Errorf("spec geometry = %dx%d, want 1280x720", gotSpec.TargetWidth, gotSpec.TargetHeight)
	}
}

func TestRunSlideshowScanFailure(t *testing.T) {
	f := newFixture()
	f.scan = func(ctx context.Context, in pipeline.ScanInput) (pipeline.ScanResult, error) {
		return pipeline.ScanResult{}, pipeline.ErrNoItems
	}

	result := f.build().RunSlideshow(context.Background(), slideshowConfig())
	if result.Succeeded || result.Stopped {
		t.Fatalf("expected plain failure, got %+v", result)
	}
	if f.sink.DoneCount() != 1 {
		t.Errorf("Done invoked %d times, want 1", f.sink.DoneCount())
	}
	if ok, msg := f.sink.Result(); ok || !strings.Contains(msg, "no usable items") {
		t.Errorf("Done = (%v, %s)", ok, msg)
	}
}

func TestRunSlideshowStopped(t *testing.T) {
	f := newFixture()
	f.render = func(ctx context.Context, in pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
		return pipeline.RenderFramesResult{}, pipeline.ErrStopped
	}

	result := f.build().RunSlideshow(context.Background(), slideshowConfig())
	if !result.Stopped {
		t.Fatal("expected a stopped result")
	}
	if result.Succeeded {
		t.Error("stopped is not success")
	}
	if f.sink.DoneCount() != 1 {
		t.Errorf("Done invoked %d times, want 1", f.sink.DoneCount())
	}
}

func TestRunSlideshowCleansWorkDir(t *testing.T) {
	f := newFixture()
	var workDir string
	f.render = func(ctx context.Context, in pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
		workDir = in.WorkDir
		f.fs.WriteFile(in.WorkDir+"/raw_video.mp4", []byte("raw"))
		return pipeline.RenderFramesResult{RawArtifactPath: in.WorkDir + "/raw_video.mp4"}, nil
	}

	f.build().RunSlideshow(context.Background(), slideshowConfig())

	if workDir == "" {
		t.Fatal("render stage never ran")
	}
	if ok, _ := f.fs.Exists(workDir); ok {
		t.Error("work dir should be removed after the job")
	}
}

func TestRunSlideshowRejectsConcurrentJobs(t *testing.T) {
	f := newFixture()
	release := make(chan struct{})
	started := make(chan struct{})
	f.render = func(ctx context.Context, in pipeline.RenderFramesInput) (pipeline.RenderFramesResult, error) {
		close(started)
		<-release
		return pipeline.RenderFramesResult{RawArtifactPath: "/raw"}, nil
	}

	orch := f.build()
	ch, err := orch.StartSlideshow(context.Background(), slideshowConfig())
	if err != nil {
		t.Fatalf("StartSlideshow() error: %v", err)
	}
	<-started

	if _, err := orch.StartSlideshow(context.Background(), slideshowConfig()); err == nil {
		t.Error("second concurrent job should be rejected")
	}

	close(release)
	result := <-ch
	if !result.Succeeded {
		t.Errorf("first job should still succeed: %+v", result)
	}

	// After completion a new job is accepted again.
	if _, err := orch.StartSlideshow(context.Background(), slideshowConfig()); err != nil {
		t.Errorf("job after completion rejected: %v", err)
	}
}

func TestRunConvertSelectsPortraitOnly(t *testing.T) {
	f := newFixture()
	f.resolver.items = map[string]pipeline.MediaItem{
		"/v/portrait.mp4":  {Path: "/v/portrait.mp4", NativeWidth: 1080, NativeHeight: 1920, Readable: true},
		"/v/landscape.mp4": {Path: "/v/landscape.mp4", NativeWidth: 1920, NativeHeight: 1080, Readable: true},
		"/v/broken.mp4":    {Path: "/v/broken.mp4"},
	}
	var converted []string
	f.convert = func(ctx context.Context, in pipeline.ConvertInput) (pipeline.ConvertOutput, error) {
		converted = append(converted, in.Item.Path)
		return pipeline.ConvertOutput{OutputPath: in.OutputPath}, nil
	}

	cfg := DefaultConvertConfig()
	cfg.Paths = []string{"/v/portrait.mp4", "/v/landscape.mp4", "/v/broken.mp4"}
	result := f.build().RunConvert(context.Background(), cfg)

	if !result.Succeeded {
		t.Fatalf("job failed: %s", result.Message)
	}
	if len(converted) != 1 || converted[0] != "/v/portrait.mp4" {
		t.Errorf("converted = %v, want only the portrait file", converted)
	}
}

func TestRunConvertContinuesAfterItemFailure(t *testing.T) {
	f := newFixture()
	f.resolver.items = map[string]pipeline.MediaItem{
		"/v/a.mp4": {Path: "/v/a.mp4", NativeWidth: 720, NativeHeight: 1280, Readable: true},
		"/v/b.mp4": {Path: "/v/b.mp4", NativeWidth: 720, NativeHeight: 1280, Readable: true},
	}
	f.convert = func(ctx context.Context, in pipeline.ConvertInput) (pipeline.ConvertOutput, error) {
		if in.Item.Path == "/v/a.mp4" {
			return pipeline.ConvertOutput{}, errors.New("corrupt stream")
		}
		return pipeline.ConvertOutput{OutputPath: in.OutputPath}, nil
	}

	cfg := DefaultConvertConfig()
	cfg.Paths = []string{"/v/a.mp4", "/v/b.mp4"}
	result := f.build().RunConvert(context.Background(), cfg)

	if !result.Succeeded {
		t.Fatalf("partial success should still succeed: %s", result.Message)
	}
	if !strings.Contains(result.Message, "1/2") {
		t.Errorf("message should report 1/2, got %s", result.Message)
	}
}

func TestRunConvertAllItemsFail(t *testing.T) {
	f := newFixture()
	f.resolver.items = map[string]pipeline.MediaItem{
		"/v/a.mp4": {Path: "/v/a.mp4", NativeWidth: 720, NativeHeight: 1280, Readable: true},
	}
	f.convert = func(ctx context.Context, in pipeline.ConvertInput) (pipeline.ConvertOutput, error) {
		return pipeline.ConvertOutput{}, errors.New("corrupt stream")
	}

	cfg := DefaultConvertConfig()
	cfg.Paths = []string{"/v/a.mp4"}
	result := f.build().RunConvert(context.Background(), cfg)

	if result.Succeeded {
		t.Fatal("all-items failure should fail the job")
	}
	if f.sink.DoneCount() != 1 {
		t.Errorf("Done invoked %d times, want 1", f.sink.DoneCount())
	}
}

func TestRunConvertStopped(t *testing.T) {
	f := newFixture()
	f.resolver.items = map[string]pipeline.MediaItem{
		"/v/a.mp4": {Path: "/v/a.mp4", NativeWidth: 720, NativeHeight: 1280, Readable: true},
	}
	f.convert = func(ctx context.Context, in pipeline.ConvertInput) (pipeline.ConvertOutput, error) {
		return pipeline.ConvertOutput{}, pipeline.ErrStopped
	}

	cfg := DefaultConvertConfig()
	cfg.Paths = []string{"/v/a.mp4"}
	result := f.build().RunConvert(context.Background(), cfg)

	if !result.Stopped {
		t.Fatalf("expected a stopped result, got %+v", result)
	}
}

func TestOutputPathDerivation(t *testing.T) {
	o := &Orchestrator{}

	cfg := DefaultConvertConfig()
	item := pipeline.MediaItem{Path: "/videos/clip.mov"}
	if got := o.outputPath(cfg, item); got != "/videos/clip_landscape.mp4" {
		t.Errorf("outputPath = %s", got)
	}

	cfg.OutputDir = "/out"
	cfg.Suffix = "_wide"
	if got := o.outputPath(cfg, item); got != "/out/clip_wide.mp4" {
		t.Errorf("outputPath = %s", got)
	}
}
