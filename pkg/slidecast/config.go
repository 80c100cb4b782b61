package slidecast

import (
	"math"

	"github.com/user/slidecast/pkg/orchestrator"
)

// ResolutionPreset names an output geometry.
type ResolutionPreset string

const (
	Resolution480p     ResolutionPreset = "480p"
	Resolution720p     ResolutionPreset = "720p"
	Resolution1080p    ResolutionPreset = "1080p"
	ResolutionOriginal ResolutionPreset = "original"
)

// Dimensions returns the pixel geometry of a preset. Original yields
// zero values, which the pipeline fills from the first readable source.
func (p ResolutionPreset) Dimensions() (width, height int) {
	switch p {
	case Resolution480p:
		return 854, 480
	case Resolution1080p:
		return 1920, 1080
	case ResolutionOriginal:
		return 0, 0
	default:
		return 1280, 720
	}
}

// ConfigBuilder provides a fluent interface for building a slideshow
// configuration.
type ConfigBuilder struct {
	config orchestrator.SlideshowConfig

	// Time-based timing is resolved against FPS at Build time, so the
	// call order of the With methods does not matter.
	secondsPerItem float64
	crossfadeMs    int
}

// NewConfigBuilder creates a new ConfigBuilder with 720p defaults.
func NewConfigBuilder() *ConfigBuilder {
	cfg := orchestrator.DefaultSlideshowConfig()
	cfg.TargetWidth, cfg.TargetHeight = Resolution720p.Dimensions()
	return &ConfigBuilder{config: cfg, crossfadeMs: -1}
}

// WithResolution applies a named resolution preset.
func (b *ConfigBuilder) WithResolution(preset ResolutionPreset) *ConfigBuilder {
	b.config.TargetWidth, b.config.TargetHeight = preset.Dimensions()
	return b
}

// WithSize sets an explicit output geometry.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.TargetWidth = width
	b.config.TargetHeight = height
	return b
}

// WithFPS sets the output frame rate.
func (b *ConfigBuilder) WithFPS(fps int) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithFramesPerItem sets how many frames each image occupies.
func (b *ConfigBuilder) WithFramesPerItem(frames int) *ConfigBuilder {
	b.config.FramesPerItem = frames
	b.secondsPerItem = 0
	return b
}

// WithSecondsPerItem sets how long each image stays on screen. The
// frame count is derived from the frame rate at Build time, never
// below one frame.
func (b *ConfigBuilder) WithSecondsPerItem(seconds float64) *ConfigBuilder {
	b.secondsPerItem = seconds
	return b
}

// WithCrossfadeFrames sets the cross-fade length. Values above the
// per-item frame count leave no stable frames but are accepted.
func (b *ConfigBuilder) WithCrossfadeFrames(frames int) *ConfigBuilder {
	b.config.CrossfadeFrames = frames
	b.crossfadeMs = -1
	return b
}

// WithCrossfadeDuration sets the cross-fade length in milliseconds,
// rounded to whole frames at Build time.
func (b *ConfigBuilder) WithCrossfadeDuration(ms int) *ConfigBuilder {
	b.crossfadeMs = ms
	return b
}

// WithShuffle enables catalog shuffling. A zero seed picks one and
// reports it for reproducibility.
func (b *ConfigBuilder) WithShuffle(seed int64) *ConfigBuilder {
	b.config.Shuffle = true
	b.config.ShuffleSeed = seed
	return b
}

// WithBGM sets the background music file.
func (b *ConfigBuilder) WithBGM(path string) *ConfigBuilder {
	b.config.BGMPath = path
	return b
}

// WithFolder sets the source image folder.
func (b *ConfigBuilder) WithFolder(folder string) *ConfigBuilder {
	b.config.Folder = folder
	return b
}

// WithOutput sets the destination file.
func (b *ConfigBuilder) WithOutput(path string) *ConfigBuilder {
	b.config.OutputPath = path
	return b
}

// Build returns the final config, applying validation and constraints.
func (b *ConfigBuilder) Build() orchestrator.SlideshowConfig {
	cfg := b.config

	if cfg.FPS < 1 {
		cfg.FPS = 1
	}
	if b.secondsPerItem > 0 {
		cfg.FramesPerItem = int(b.secondsPerItem * float64(cfg.FPS))
	}
	if b.crossfadeMs >= 0 {
		cfg.CrossfadeFrames = int(math.Round(float64(b.crossfadeMs) / 1000 * float64(cfg.FPS)))
	}
	if cfg.FramesPerItem < 1 {
		cfg.FramesPerItem = 1
	}
	if cfg.CrossfadeFrames < 0 {
		cfg.CrossfadeFrames = 0
	}

	return cfg
}
