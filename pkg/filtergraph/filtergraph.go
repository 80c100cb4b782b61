// Package filtergraph turns the declarative FilterGraphSpec into the
// filter strings the external encoder consumes.
package filtergraph

import (
	"fmt"
	"strings"

	"github.com/user/slidecast/pkg/pipeline"
)

// watermarkMargin is the fixed corner inset in pixels.
const watermarkMargin = 10

// Compose builds the base video filter for the selected composition
// mode at the given target geometry.
func Compose(spec pipeline.FilterGraphSpec, width, height int) (string, error) {
	switch spec.Mode {
	case pipeline.ModeBlur:
		return blurFilter(width, height, spec.BlurStrength), nil
	case pipeline.ModeLetterbox:
		return letterboxFilter(width, height, spec.LetterboxColor), nil
	case pipeline.ModeZoomCrop:
		// The zoom factor is deliberately unused beyond validation: the
		// shipped behavior is plain height-matching followed by a center
		// crop, and changing that would change every existing output.
		if spec.ZoomFactor < 0 {
			return "", fmt.Errorf("negative zoom factor %g", spec.ZoomFactor)
		}
		return zoomCropFilter(width, height), nil
	default:
		return "", fmt.Errorf("unknown composition mode %d", spec.Mode)
	}
}

// blurFilter letterboxes the source over a blurred frame-filling copy:
// foreground scaled to fit, background scaled to fill then box-blurred,
// foreground overlaid centered.
func blurFilter(w, h, strength int) string {
	s := strength
	if s < 1 {
		s = 1
	}
	return fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black[fg];"+
			"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,boxblur=%d:%d[bg];"+
			"[bg][fg]overlay=(W-w)/2:(H-h)/2",
		w, h, w, h, w, h, w, h, s, s)
}

// letterboxFilter scales to fit and pads with a solid color.
func letterboxFilter(w, h int, hexColor string) string {
	return fmt.Sprintf("scale='min(%d,iw)':-2,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:%s",
		w, w, h, Color(hexColor))
}

// zoomCropFilter scales so the height matches, then center-crops width.
func zoomCropFilter(w, h int) string {
	return fmt.Sprintf("scale=-2:%d,crop=%d:%d", h, w, h)
}

// WithWatermark layers a watermark chain over a base filter, producing
// a filter_complex that expects the watermark image as input [1:v].
func WithWatermark(base string, wm pipeline.WatermarkSpec, targetW int) string {
	scalePx := int(float64(targetW) * wm.ScaleFraction)
	x, y := anchorExprs(wm.Anchor)
	return fmt.Sprintf(
		"[1:v]scale=%d:-2,format=rgba,colorchannelmixer=aa=%g[wm];%s[base];[base][wm]overlay=%s:%s",
		scalePx, wm.Opacity, base, x, y)
}

// anchorExprs returns the overlay position expressions for an anchor.
// Corners keep a fixed margin; center is exact.
func anchorExprs(a pipeline.Anchor) (x, y string) {
	m := fmt.Sprintf("%d", watermarkMargin)
	switch a {
	case pipeline.AnchorTopLeft:
		return m, m
	case pipeline.AnchorTopRight:
		return fmt.Sprintf("W-w-%d", watermarkMargin), m
	case pipeline.AnchorBottomLeft:
		return m, fmt.Sprintf("H-h-%d", watermarkMargin)
	case pipeline.AnchorCenter:
		return "(W-w)/2", "(H-h)/2"
	default:
		return fmt.Sprintf("W-w-%d", watermarkMargin), fmt.Sprintf("H-h-%d", watermarkMargin)
	}
}

// MixAudio builds the amix graph blending original audio at unit volume
// with the background track at the configured volume, bounded to the
// shorter input. Expects original audio as [1:a] and bgm as [2:a].
func MixAudio(volume float64) string {
	return fmt.Sprintf(
		"[1:a]volume=1.0[a1];[2:a]volume=%g[a2];[a1][a2]amix=inputs=2:duration=shortest[aout]",
		volume)
}

// Color converts "#rrggbb" to ffmpeg's 0xrrggbb spelling. Anything else
// is passed through (ffmpeg also accepts color names).
func Color(hex string) string {
	if strings.HasPrefix(hex, "#") {
		return "0x" + hex[1:]
	}
	return hex
}
