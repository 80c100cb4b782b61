package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/slidecast/pkg/adapters/ggrenderer"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFitFrameDimensions(t *testing.T) {
	comp := New(ggrenderer.New())

	tests := []struct {
		name             string
		srcW, srcH       int
		targetW, targetH int
	}{
		{"wider than target", 4000, 1000, 1280, 720},
		{"taller than target", 1000, 4000, 1280, 720},
		{"exact aspect", 2560, 1440, 1280, 720},
		{"portrait source landscape target", 1080, 1920, 1920, 1080},
		{"upscale small source", 100, 100, 854, 480},
		{"single row", 5000, 1, 1280, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solidImage(tt.srcW, tt.srcH, color.RGBA{R: 200, G: 100, B: 50, A: 255})
			got := comp.FitFrame(src, tt.targetW, tt.targetH)
			if got.Bounds().Dx() != tt.targetW || got.Bounds().Dy() != tt.targetH {
				t.Errorf("FitFrame() = %dx%d, want %dx%d",
					got.Bounds().Dx(), got.Bounds().Dy(), tt.targetW, tt.targetH)
			}
		})
	}
}

func TestFitFrameCentersCrop(t *testing.T) {
	comp := New(ggrenderer.New())

	// Left half red, right half blue. Fitting a wide strip to a square
	// must crop symmetrically, so both colors survive.
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 400; x++ {
			if x < 200 {
				src.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			} else {
				src.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}

	got := comp.FitFrame(src, 100, 100)
	left := got.RGBAAt(10, 50)
	right := got.RGBAAt(90, 50)
	if left.R < 200 {
		t.Errorf("left side should stay red, got %v", left)
	}
	if right.B < 200 {
		t.Errorf("right side should stay blue, got %v", right)
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := solidImage(10, 10, color.RGBA{R: 255, A: 255})
	b := solidImage(10, 10, color.RGBA{B: 255, A: 255})

	if got := Blend(a, b, 0); got.RGBAAt(5, 5) != a.RGBAAt(5, 5) {
		t.Errorf("alpha 0 should reproduce first frame, got %v", got.RGBAAt(5, 5))
	}
	if got := Blend(a, b, 1); got.RGBAAt(5, 5) != b.RGBAAt(5, 5) {
		t.Errorf("alpha 1 should reproduce second frame, got %v", got.RGBAAt(5, 5))
	}
}

func TestBlendMidpoint(t *testing.T) {
	a := solidImage(4, 4, color.RGBA{R: 200, A: 255})
	b := solidImage(4, 4, color.RGBA{R: 100, A: 255})

	got := Blend(a, b, 0.5).RGBAAt(2, 2)
	if got.R != 150 {
		t.Errorf("midpoint red = %d, want 150", got.R)
	}
	if got.A != 255 {
		t.Errorf("alpha channel = %d, want 255", got.A)
	}
}

func TestBlendClampsAlpha(t *testing.T) {
	a := solidImage(4, 4, color.RGBA{R: 10, A: 255})
	b := solidImage(4, 4, color.RGBA{R: 250, A: 255})

	if got := Blend(a, b, -3).RGBAAt(0, 0); got.R != 10 {
		t.Errorf("negative alpha should clamp to 0, got %v", got)
	}
	if got := Blend(a, b, 7).RGBAAt(0, 0); got.R != 250 {
		t.Errorf("alpha above 1 should clamp to 1, got %v", got)
	}
}

func TestSolidFrame(t *testing.T) {
	comp := New(ggrenderer.New())

	frame := comp.SolidFrame(64, 32, color.Black)
	if frame.Bounds().Dx() != 64 || frame.Bounds().Dy() != 32 {
		t.Fatalf("SolidFrame() = %dx%d, want 64x32", frame.Bounds().Dx(), frame.Bounds().Dy())
	}
	px := frame.RGBAAt(30, 15)
	if px.R != 0 || px.G != 0 || px.B != 0 {
		t.Errorf("frame should be black, got %v", px)
	}
}
