package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/slidecast/pkg/adapters/logger"
	"github.com/user/slidecast/pkg/mocks"
	"github.com/user/slidecast/pkg/pipeline"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newStage() *Stage {
	return NewStage(mocks.NewProber(), logger.NewNoop())
}

func TestExecuteFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b.png", 10, 20)
	writePNG(t, dir, "a.PNG", 20, 10)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := newStage().Execute(context.Background(), pipeline.ScanInput{
		Folder: dir,
		Kind:   pipeline.KindImage,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(result.Items))
	}
	// Lexicographic: "a.PNG" sorts before "b.png".
	if filepath.Base(result.Items[0].Path) != "a.PNG" {
		t.Errorf("first item = %s, want a.PNG", result.Items[0].Path)
	}
	for i, item := range result.Items {
		if item.OrdinalIndex != i {
			t.Errorf("item %d has ordinal %d", i, item.OrdinalIndex)
		}
		if !item.Readable {
			t.Errorf("item %d should be readable", i)
		}
	}
	if result.Items[0].NativeWidth != 20 || result.Items[0].NativeHeight != 10 {
		t.Errorf("geometry = %dx%d, want 20x10", result.Items[0].NativeWidth, result.Items[0].NativeHeight)
	}
}

func TestExecuteEmptyFolder(t *testing.T) {
	_, err := newStage().Execute(context.Background(), pipeline.ScanInput{
		Folder: t.TempDir(),
		Kind:   pipeline.KindImage,
	})
	if !errors.Is(err, pipeline.ErrNoItems) {
		t.Fatalf("got %v, want ErrNoItems", err)
	}
}

func TestExecuteMissingFolder(t *testing.T) {
	_, err := newStage().Execute(context.Background(), pipeline.ScanInput{
		Folder: filepath.Join(t.TempDir(), "missing"),
		Kind:   pipeline.KindImage,
	})
	if err == nil {
		t.Fatal("expected an error for a missing folder")
	}
}

func TestExecuteKeepsUnreadablePlaceholders(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 10, 10)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	writePNG(t, dir, "c.png", 10, 10)

	result, err := newStage().Execute(context.Background(), pipeline.ScanInput{
		Folder: dir,
		Kind:   pipeline.KindImage,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(result.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(result.Items))
	}
	if result.Items[1].Readable {
		t.Error("broken.png should be an unreadable placeholder")
	}
	if result.Items[1].OrdinalIndex != 1 {
		t.Errorf("placeholder ordinal = %d, want 1", result.Items[1].OrdinalIndex)
	}
	if !result.Items[0].Readable || !result.Items[2].Readable {
		t.Error("intact files should stay readable")
	}
}

func TestExecuteShuffleDeterministic(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writePNG(t, dir, fmt.Sprintf("img%02d.png", i), 4, 4)
	}

	run := func(seed int64) []string {
		result, err := newStage().Execute(context.Background(), pipeline.ScanInput{
			Folder:  dir,
			Kind:    pipeline.KindImage,
			Shuffle: true,
			Seed:    seed,
		})
		if err != nil {
			t.Fatalf("Execute() error: %v", err)
		}
		if result.Seed != seed {
			t.Fatalf("reported seed = %d, want %d", result.Seed, seed)
		}
		names := make([]string, len(result.Items))
		for i, item := range result.Items {
			names[i] = filepath.Base(item.Path)
		}
		return names
	}

	first := run(42)
	second := run(42)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", first, second)
		}
	}

	other := run(43)
	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds should produce different orders")
	}
}

func TestExecuteShufflePicksSeed(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 4, 4)

	result, err := newStage().Execute(context.Background(), pipeline.ScanInput{
		Folder:  dir,
		Kind:    pipeline.KindImage,
		Shuffle: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Seed == 0 {
		t.Error("a zero input seed should be replaced by a picked one")
	}
}

func TestExecuteVideoCatalogUsesProber(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.png"), []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	prober := mocks.NewProber()
	prober.DimensionsFunc = func(ctx context.Context, path string) (int, int, error) {
		return 720, 1280, nil
	}
	prober.DurationFunc = func(ctx context.Context, path string) (float64, error) {
		return 12.5, nil
	}

	stage := NewStage(prober, logger.NewNoop())
	result, err := stage.Execute(context.Background(), pipeline.ScanInput{
		Folder: dir,
		Kind:   pipeline.KindVideo,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	item := result.Items[0]
	if !item.Portrait() {
		t.Error("720x1280 should be portrait")
	}
	if item.DurationSeconds != 12.5 {
		t.Errorf("duration = %g, want 12.5", item.DurationSeconds)
	}
}

func TestResolveUnreadableVideo(t *testing.T) {
	prober := mocks.NewProber()
	prober.DimensionsFunc = func(ctx context.Context, path string) (int, int, error) {
		return 0, 0, errors.New("no such file")
	}

	stage := NewStage(prober, logger.NewNoop())
	item := stage.Resolve(context.Background(), "/nope.mp4", pipeline.KindVideo)
	if item.Readable {
		t.Error("failed probe should leave the item unreadable")
	}
}
