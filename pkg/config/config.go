// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/slidecast/pkg/orchestrator"
	"github.com/user/slidecast/pkg/pipeline"
)

// Config represents the full configuration for slidecast.
type Config struct {
	// Input/Output
	Folder     string `yaml:"folder"`
	OutputPath string `yaml:"output"`

	// Geometry
	Resolution string `yaml:"resolution"` // 480p, 720p, 1080p or original
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`

	// Timing. The time-based settings win over the raw frame counts:
	// a positive SecondsPerItem derives FramesPerItem from FPS, and a
	// non-negative CrossfadeMs derives CrossfadeFrames from FPS.
	FPS             int     `yaml:"fps"`
	SecondsPerItem  float64 `yaml:"seconds_per_item"`
	CrossfadeMs     int     `yaml:"crossfade_ms"`
	FramesPerItem   int     `yaml:"frames_per_item"`
	CrossfadeFrames int     `yaml:"crossfade_frames"`

	// Ordering
	Shuffle     bool  `yaml:"shuffle"`
	ShuffleSeed int64 `yaml:"shuffle_seed"`

	// Audio
	BGMPath   string  `yaml:"bgm"`
	BGMVolume float64 `yaml:"bgm_volume"`

	// Conversion
	Convert ConvertConfig `yaml:"convert"`

	// Tools
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// ConvertConfig represents portrait-conversion settings.
type ConvertConfig struct {
	OutputDir      string          `yaml:"output_dir"`
	Suffix         string          `yaml:"suffix"`
	Mode           string          `yaml:"mode"` // blur, letterbox or zoomcrop
	BlurStrength   int             `yaml:"blur_strength"`
	LetterboxColor string          `yaml:"letterbox_color"`
	ZoomFactor     float64         `yaml:"zoom_factor"`
	PortraitOnly   bool            `yaml:"portrait_only"`
	Watermark      WatermarkConfig `yaml:"watermark"`
	Audio          AudioConfig     `yaml:"audio"`
}

// WatermarkConfig represents watermark overlay settings.
type WatermarkConfig struct {
	Path     string  `yaml:"path"`
	Scale    float64 `yaml:"scale"`
	Opacity  float64 `yaml:"opacity"`
	Position string  `yaml:"position"`
}

// AudioConfig represents background music settings for conversions.
type AudioConfig struct {
	BGMPath          string  `yaml:"bgm"`
	PreserveOriginal bool    `yaml:"preserve_original"`
	Volume           float64 `yaml:"volume"`
	TrimToVideo      bool    `yaml:"trim_to_video"`
	LoopIfShorter    bool    `yaml:"loop_if_shorter"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Resolution: "720p",

		FPS:             30,
		CrossfadeMs:     -1,
		FramesPerItem:   90,
		CrossfadeFrames: 15,

		BGMVolume: 0.3,

		Convert: ConvertConfig{
			Suffix:         "_landscape",
			Mode:           "blur",
			BlurStrength:   20,
			LetterboxColor: "#000000",
			ZoomFactor:     1.0,
			PortraitOnly:   true,
			Watermark: WatermarkConfig{
				Scale:    0.15,
				Opacity:  0.8,
				Position: "bottom-right",
			},
			Audio: AudioConfig{
				PreserveOriginal: true,
				Volume:           0.3,
				TrimToVideo:      true,
			},
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Dimensions resolves the named resolution preset. Explicit width and
// height win over the preset; "original" yields zero values, which the
// pipeline fills from the first readable source.
func (c Config) Dimensions() (int, int) {
	if c.Width > 0 && c.Height > 0 {
		return c.Width, c.Height
	}
	switch c.Resolution {
	case "480p":
		return 854, 480
	case "1080p":
		return 1920, 1080
	case "original":
		return 0, 0
	default:
		return 1280, 720
	}
}

// Timing resolves the per-item and cross-fade frame counts, deriving
// them from the time-based settings when those are set. At least one
// frame per item is always emitted, however short the duration.
func (c Config) Timing() (framesPerItem, crossfadeFrames int) {
	framesPerItem = c.FramesPerItem
	if c.SecondsPerItem > 0 {
		framesPerItem = int(c.SecondsPerItem * float64(c.FPS))
		if framesPerItem < 1 {
			framesPerItem = 1
		}
	}

	crossfadeFrames = c.CrossfadeFrames
	if c.CrossfadeMs >= 0 {
		crossfadeFrames = int(math.Round(float64(c.CrossfadeMs) / 1000 * float64(c.FPS)))
	}
	return framesPerItem, crossfadeFrames
}

// ToSlideshowConfig converts Config to orchestrator.SlideshowConfig.
func (c Config) ToSlideshowConfig() orchestrator.SlideshowConfig {
	width, height := c.Dimensions()
	framesPerItem, crossfadeFrames := c.Timing()
	return orchestrator.SlideshowConfig{
		Folder:          c.Folder,
		OutputPath:      c.OutputPath,
		TargetWidth:     width,
		TargetHeight:    height,
		FPS:             c.FPS,
		FramesPerItem:   framesPerItem,
		CrossfadeFrames: crossfadeFrames,
		Shuffle:         c.Shuffle,
		ShuffleSeed:     c.ShuffleSeed,
		BGMPath:         c.BGMPath,
	}
}

// ToConvertConfig converts Config to orchestrator.ConvertConfig.
func (c Config) ToConvertConfig() orchestrator.ConvertConfig {
	cc := c.Convert

	graph := pipeline.FilterGraphSpec{
		Mode:           ParseMode(cc.Mode),
		BlurStrength:   cc.BlurStrength,
		LetterboxColor: cc.LetterboxColor,
		ZoomFactor:     cc.ZoomFactor,
	}
	if cc.Watermark.Path != "" {
		graph.Watermark = &pipeline.WatermarkSpec{
			Path:          cc.Watermark.Path,
			ScaleFraction: cc.Watermark.Scale,
			Opacity:       cc.Watermark.Opacity,
			Anchor:        pipeline.ParseAnchor(cc.Watermark.Position),
		}
	}
	if cc.Audio.BGMPath != "" || !cc.Audio.PreserveOriginal {
		graph.Audio = &pipeline.AudioSpec{
			BGMPath:          cc.Audio.BGMPath,
			PreserveOriginal: cc.Audio.PreserveOriginal,
			Volume:           cc.Audio.Volume,
			TrimToVideo:      cc.Audio.TrimToVideo,
			LoopIfShorter:    cc.Audio.LoopIfShorter,
		}
	}

	width, height := c.Dimensions()
	if width == 0 || height == 0 {
		width, height = 1920, 1080
	}

	return orchestrator.ConvertConfig{
		Folder:       c.Folder,
		OutputDir:    cc.OutputDir,
		Suffix:       cc.Suffix,
		TargetWidth:  width,
		TargetHeight: height,
		PortraitOnly: cc.PortraitOnly,
		Graph:        graph,
	}
}

// ParseMode maps the config spelling to a ComposeMode. Unknown values
// fall back to blur.
func ParseMode(s string) pipeline.ComposeMode {
	switch s {
	case "letterbox":
		return pipeline.ModeLetterbox
	case "zoomcrop", "zoom-crop":
		return pipeline.ModeZoomCrop
	default:
		return pipeline.ModeBlur
	}
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.Black
	}

	parse := func(hi, lo byte) uint8 {
		return hexValue(hi)<<4 | hexValue(lo)
	}
	return color.RGBA{
		R: parse(hex[0], hex[1]),
		G: parse(hex[2], hex[3]),
		B: parse(hex[4], hex[5]),
		A: 255,
	}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
