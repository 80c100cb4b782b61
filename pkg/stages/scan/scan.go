// Package scan implements the input catalog stage.
package scan

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	// Geometry probing of catalog images.
	_ "image/jpeg"
	_ "image/png"

	"github.com/user/slidecast/pkg/pipeline"
	"github.com/user/slidecast/pkg/ports"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
}

// Stage enumerates and orders source media.
type Stage struct {
	prober ports.Prober
	logger ports.Logger
}

// NewStage creates a new scan stage. The prober is only consulted for
// video catalogs.
func NewStage(prober ports.Prober, logger ports.Logger) *Stage {
	return &Stage{
		prober: prober,
		logger: logger.WithComponent("scan"),
	}
}

// Execute lists the folder, filters by the supported extension set,
// orders lexicographically and resolves per-item geometry. Items whose
// geometry cannot be read stay in the sequence as unreadable
// placeholders so ordinal indices remain stable.
func (s *Stage) Execute(ctx context.Context, input pipeline.ScanInput) (pipeline.ScanResult, error) {
	entries, err := os.ReadDir(input.Folder)
	if err != nil {
		return pipeline.ScanResult{}, fmt.Errorf("read folder %s: %w", input.Folder, err)
	}

	exts := imageExts
	if input.Kind == pipeline.KindVideo {
		exts = videoExts
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return pipeline.ScanResult{}, fmt.Errorf("%w in %s", pipeline.ErrNoItems, input.Folder)
	}
	sort.Strings(names)

	seed := input.Seed
	if input.Shuffle {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		names = permute(names, seed)
	}

	items := make([]pipeline.MediaItem, 0, len(names))
	for i, name := range names {
		item := s.resolve(ctx, filepath.Join(input.Folder, name), input.Kind)
		item.OrdinalIndex = i
		if !item.Readable {
			s.logger.Warn("Cannot read geometry of %s", name)
		}
		items = append(items, item)
	}

	s.logger.Debug("Cataloged %d items", len(items))
	return pipeline.ScanResult{Items: items, Seed: seed}, nil
}

// Resolve probes a single file outside a folder scan, for callers that
// pass explicit paths instead of a folder.
func (s *Stage) Resolve(ctx context.Context, path string, kind pipeline.MediaKind) pipeline.MediaItem {
	return s.resolve(ctx, path, kind)
}

func (s *Stage) resolve(ctx context.Context, path string, kind pipeline.MediaKind) pipeline.MediaItem {
	item := pipeline.MediaItem{Path: path, Kind: kind}

	switch kind {
	case pipeline.KindVideo:
		w, h, err := s.prober.Dimensions(ctx, path)
		if err != nil {
			return item
		}
		item.NativeWidth = w
		item.NativeHeight = h
		if dur, err := s.prober.Duration(ctx, path); err == nil {
			item.DurationSeconds = dur
		}
		item.Readable = true
	default:
		f, err := os.Open(path)
		if err != nil {
			return item
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return item
		}
		item.NativeWidth = cfg.Width
		item.NativeHeight = cfg.Height
		item.Readable = true
	}

	return item
}

// permute applies a uniform random permutation that is a pure function
// of the sequence length and the seed, so a caller-fixed seed makes the
// shuffle reproducible.
func permute(names []string, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	out := make([]string, len(names))
	for i, j := range rng.Perm(len(names)) {
		out[i] = names[j]
	}
	return out
}

var _ pipeline.Stage[pipeline.ScanInput, pipeline.ScanResult] = (*Stage)(nil)
