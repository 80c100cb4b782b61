// Package compositor implements the deterministic pixel transformations
// behind the slideshow renderer: zoom-crop fitting, cross-fade blending
// and solid terminal frames.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/user/slidecast/pkg/ports"
)

// Compositor produces frames at a fixed target geometry.
type Compositor struct {
	renderer ports.Renderer
}

// New creates a Compositor backed by the given renderer.
func New(renderer ports.Renderer) *Compositor {
	return &Compositor{renderer: renderer}
}

// FitFrame zoom-crops src to fill targetW x targetH exactly. The crop
// is centered on the excess dimension, so peripheral content is
// discarded rather than padded — the output never has letterbox bars.
func (c *Compositor) FitFrame(src image.Image, targetW, targetH int) *image.RGBA {
	bounds := src.Bounds()
	iw, ih := bounds.Dx(), bounds.Dy()

	targetRatio := float64(targetW) / float64(targetH)
	srcRatio := float64(iw) / float64(ih)

	var cropW, cropH, left, top int
	if srcRatio > targetRatio {
		// source wider: crop width
		cropH = ih
		cropW = int(float64(ih) * targetRatio)
		left = (iw - cropW) / 2
		top = 0
	} else {
		// source taller: crop height
		cropW = iw
		cropH = int(float64(iw) / targetRatio)
		left = 0
		top = (ih - cropH) / 2
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}

	cropped := cropImage(src, left, top, cropW, cropH)
	resized := c.renderer.ResizeImage(cropped, targetW, targetH)
	return toRGBA(resized)
}

// Blend cross-fades two equally sized frames. alpha 0 reproduces a,
// alpha 1 reproduces b. The blend runs in float32 before narrowing back
// to 8 bits so repeated fades don't band or overflow.
func Blend(a, b *image.RGBA, alpha float64) *image.RGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	bounds := a.Bounds()
	out := image.NewRGBA(bounds)

	fa := float32(1 - alpha)
	fb := float32(alpha)
	for i := range a.Pix {
		v := float32(a.Pix[i])*fa + float32(b.Pix[i])*fb
		out.Pix[i] = uint8(math.Round(float64(v)))
	}
	return out
}

// SolidFrame returns a single-color frame, used as the fade target
// after the last catalog item.
func (c *Compositor) SolidFrame(width, height int, col color.Color) *image.RGBA {
	canvas := c.renderer.CreateCanvas(width, height, col)
	return toRGBA(canvas.ToImage())
}

// cropImage extracts a zero-origin copy of the given region.
func cropImage(src image.Image, x, y, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	min := src.Bounds().Min
	draw.Draw(out, out.Bounds(), src, image.Pt(min.X+x, min.Y+y), draw.Src)
	return out
}

// toRGBA converts an image to RGBA without copying when possible.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}
