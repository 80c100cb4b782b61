// Command slidecast builds slideshow videos from image folders and
// converts portrait footage to landscape.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/user/slidecast/pkg/adapters/ffmpegcli"
	"github.com/user/slidecast/pkg/adapters/logger"
	"github.com/user/slidecast/pkg/config"
	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
	"github.com/user/slidecast/pkg/slidecast"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "slidecast",
		Usage:   "Build slideshow videos and convert portrait footage to landscape",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (debug, info, warn, error, quiet)",
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: "path to the ffmpeg binary",
			},
			&cli.StringFlag{
				Name:  "ffprobe",
				Usage: "path to the ffprobe binary",
			},
		},
		Commands: []*cli.Command{
			slideshowCommand(),
			convertCommand(),
			probeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func slideshowCommand() *cli.Command {
	return &cli.Command{
		Name:      "slideshow",
		Usage:     "Build a slideshow video from a folder of images",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "output MP4 file path",
			},
			&cli.StringFlag{
				Name:  "resolution",
				Usage: "output resolution (480p, 720p, 1080p, original)",
			},
			&cli.IntFlag{Name: "fps", Usage: "output frame rate"},
			&cli.Float64Flag{Name: "seconds-per-item", Usage: "seconds each image stays on screen"},
			&cli.IntFlag{Name: "crossfade-ms", Usage: "cross-fade duration in milliseconds"},
			&cli.IntFlag{Name: "frames-per-item", Usage: "frames each image occupies (overrides --seconds-per-item)"},
			&cli.IntFlag{Name: "crossfade-frames", Usage: "cross-fade length in frames (overrides --crossfade-ms)"},
			&cli.BoolFlag{Name: "shuffle", Usage: "shuffle image order"},
			&cli.Int64Flag{Name: "seed", Usage: "shuffle seed (0 picks one)"},
			&cli.StringFlag{Name: "bgm", Usage: "background music file"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one folder argument")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			cfg.Folder = c.Args().First()
			cfg.OutputPath = c.String("output")
			if c.IsSet("resolution") {
				cfg.Resolution = c.String("resolution")
				cfg.Width, cfg.Height = 0, 0
			}
			if c.IsSet("fps") {
				cfg.FPS = c.Int("fps")
			}
			if c.IsSet("seconds-per-item") {
				cfg.SecondsPerItem = c.Float64("seconds-per-item")
			}
			if c.IsSet("crossfade-ms") {
				cfg.CrossfadeMs = c.Int("crossfade-ms")
			}
			if c.IsSet("frames-per-item") {
				cfg.FramesPerItem = c.Int("frames-per-item")
				cfg.SecondsPerItem = 0
			}
			if c.IsSet("crossfade-frames") {
				cfg.CrossfadeFrames = c.Int("crossfade-frames")
				cfg.CrossfadeMs = -1
			}
			if c.IsSet("shuffle") {
				cfg.Shuffle = c.Bool("shuffle")
			}
			if c.IsSet("seed") {
				cfg.ShuffleSeed = c.Int64("seed")
			}
			if c.IsSet("bgm") {
				cfg.BGMPath = c.String("bgm")
			}

			app, ctx, log := buildApp(c, cfg)
			log.Info("Building slideshow from %s", cfg.Folder)

			result := app.CreateSlideshow(ctx, cfg.ToSlideshowConfig())
			return exit(result)
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert portrait videos to landscape",
		ArgsUsage: "<folder-or-files...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Usage:   "output directory (default: next to each source)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "composition mode (blur, letterbox, zoomcrop)",
			},
			&cli.StringFlag{
				Name:  "resolution",
				Usage: "output resolution (480p, 720p, 1080p)",
			},
			&cli.IntFlag{Name: "blur-strength", Usage: "box blur strength for blur mode"},
			&cli.StringFlag{Name: "letterbox-color", Usage: "pad color for letterbox mode"},
			&cli.Float64Flag{Name: "zoom", Usage: "zoom factor for zoomcrop mode"},
			&cli.StringFlag{Name: "watermark", Usage: "watermark image file"},
			&cli.Float64Flag{Name: "watermark-scale", Usage: "watermark width as fraction of output width"},
			&cli.Float64Flag{Name: "watermark-opacity", Usage: "watermark opacity (0-1]"},
			&cli.StringFlag{Name: "watermark-position", Usage: "watermark anchor (top-left, top-right, bottom-left, bottom-right, center)"},
			&cli.StringFlag{Name: "bgm", Usage: "background music file"},
			&cli.Float64Flag{Name: "bgm-volume", Usage: "background music volume for mixing"},
			&cli.BoolFlag{Name: "loop-bgm", Usage: "loop background music when shorter than the video"},
			&cli.BoolFlag{Name: "trim-bgm", Value: true, Usage: "trim background music to the video length"},
			&cli.BoolFlag{Name: "preserve-audio", Value: true, Usage: "keep the original audio track"},
			&cli.BoolFlag{Name: "all", Usage: "convert every video, not just portrait ones"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("expected a folder or one or more video files")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("output-dir") {
				cfg.Convert.OutputDir = c.String("output-dir")
			}
			if c.IsSet("mode") {
				cfg.Convert.Mode = c.String("mode")
			}
			if c.IsSet("resolution") {
				cfg.Resolution = c.String("resolution")
				cfg.Width, cfg.Height = 0, 0
			}
			if c.IsSet("blur-strength") {
				cfg.Convert.BlurStrength = c.Int("blur-strength")
			}
			if c.IsSet("letterbox-color") {
				cfg.Convert.LetterboxColor = c.String("letterbox-color")
			}
			if c.IsSet("zoom") {
				cfg.Convert.ZoomFactor = c.Float64("zoom")
			}
			if c.IsSet("watermark") {
				cfg.Convert.Watermark.Path = c.String("watermark")
			}
			if c.IsSet("watermark-scale") {
				cfg.Convert.Watermark.Scale = c.Float64("watermark-scale")
			}
			if c.IsSet("watermark-opacity") {
				cfg.Convert.Watermark.Opacity = c.Float64("watermark-opacity")
			}
			if c.IsSet("watermark-position") {
				cfg.Convert.Watermark.Position = c.String("watermark-position")
			}
			if c.IsSet("bgm") {
				cfg.Convert.Audio.BGMPath = c.String("bgm")
			}
			if c.IsSet("bgm-volume") {
				cfg.Convert.Audio.Volume = c.Float64("bgm-volume")
			}
			if c.IsSet("loop-bgm") {
				cfg.Convert.Audio.LoopIfShorter = c.Bool("loop-bgm")
			}
			if c.IsSet("trim-bgm") {
				cfg.Convert.Audio.TrimToVideo = c.Bool("trim-bgm")
			}
			if c.IsSet("preserve-audio") {
				cfg.Convert.Audio.PreserveOriginal = c.Bool("preserve-audio")
			}
			if c.Bool("all") {
				cfg.Convert.PortraitOnly = false
			}

			convertCfg := cfg.ToConvertConfig()
			args := c.Args().Slice()
			if len(args) == 1 && isDir(args[0]) {
				convertCfg.Folder = args[0]
			} else {
				convertCfg.Paths = args
			}

			app, ctx, log := buildApp(c, cfg)
			log.Info("Converting %d input(s)", c.NArg())

			result := app.ConvertPortrait(ctx, convertCfg)
			return exit(result)
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Show geometry and duration of a media file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}
			path := c.Args().First()
			prober := ffmpegcli.NewProber(c.String("ffprobe"))

			ctx, cancel := signalContext()
			defer cancel()

			w, h, err := prober.Dimensions(ctx, path)
			if err != nil {
				return err
			}
			dur, err := prober.Duration(ctx, path)
			if err != nil {
				return err
			}

			orientation := "landscape"
			if h > w {
				orientation = "portrait"
			}
			fmt.Printf("%s: %dx%d (%s), %.2fs\n", path, w, h, orientation, dur)
			return nil
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.Defaults(), nil
}

func buildApp(c *cli.Context, cfg config.Config) (*slidecast.App, context.Context, ports.Logger) {
	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}

	var log ports.Logger
	if level == "quiet" {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(level))
	}

	ffmpegPath := cfg.FFmpegPath
	if c.IsSet("ffmpeg") {
		ffmpegPath = c.String("ffmpeg")
	}
	ffprobePath := cfg.FFprobePath
	if c.IsSet("ffprobe") {
		ffprobePath = c.String("ffprobe")
	}

	app := slidecast.New(slidecast.Options{
		Logger:      log,
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
	})

	ctx, _ := signalContext()
	return app, ctx, log
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func exit(result pipeline.JobResult) error {
	switch {
	case result.Succeeded:
		return nil
	case result.Stopped:
		return fmt.Errorf("stopped by request")
	default:
		return fmt.Errorf("%s", result.Message)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
