package pipeline

import (
	"fmt"
	"strings"
)

// =============================================================================
// Catalog Types
// =============================================================================

// MediaKind distinguishes still images from video files.
type MediaKind int

const (
	// KindImage is a still image (slideshow source).
	KindImage MediaKind = iota
	// KindVideo is a video file (portrait-conversion source).
	KindVideo
)

// MediaItem is one entry of the input catalog. Items are immutable once
// the scan completes; unreadable files stay in the sequence as
// placeholders so ordinal indices remain stable.
type MediaItem struct {
	Path            string
	OrdinalIndex    int
	Kind            MediaKind
	NativeWidth     int
	NativeHeight    int
	DurationSeconds float64 // video only, 0 when unknown
	Readable        bool
}

// Portrait reports whether the item is taller than it is wide.
func (m MediaItem) Portrait() bool {
	return m.NativeHeight > m.NativeWidth
}

// ScanInput contains parameters for the catalog scan.
type ScanInput struct {
	Folder  string
	Kind    MediaKind
	Shuffle bool
	// Seed drives the shuffle permutation. Zero means "pick one";
	// the chosen seed is reported back for reproducibility.
	Seed int64
}

// ScanResult is the ordered catalog produced by the scan stage.
type ScanResult struct {
	Items []MediaItem
	Seed  int64
}

// =============================================================================
// Render Types
// =============================================================================

// RenderSpec describes one slideshow render job.
//
// CrossfadeFrames may exceed FramesPerItem; the sequencer clamps the
// stable-frame count to zero instead of rejecting the spec.
type RenderSpec struct {
	TargetWidth     int
	TargetHeight    int
	FPS             int
	FramesPerItem   int
	CrossfadeFrames int
	ShuffleEnabled  bool
	ShuffleSeed     int64
}

// StableFrames returns the number of unblended frames emitted per item.
func (s RenderSpec) StableFrames() int {
	n := s.FramesPerItem - s.CrossfadeFrames
	if n < 0 {
		return 0
	}
	return n
}

// RenderFramesInput feeds the render sequencer.
type RenderFramesInput struct {
	Items   []MediaItem
	Spec    RenderSpec
	WorkDir string
}

// RenderFramesResult reports the raw intermediate artifact.
type RenderFramesResult struct {
	RawArtifactPath string
	FramesWritten   int
	SkippedItems    int
}

// =============================================================================
// Filter Graph Types
// =============================================================================

// ComposeMode selects how a portrait source fills the landscape frame.
type ComposeMode int

const (
	// ModeBlur letterboxes the source over a blurred, frame-filling copy
	// of itself.
	ModeBlur ComposeMode = iota
	// ModeLetterbox pads the scaled source with a solid color.
	ModeLetterbox
	// ModeZoomCrop scales the source to target height and center-crops
	// the width.
	ModeZoomCrop
)

// Anchor is a watermark placement position.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
	AnchorCenter
)

// ParseAnchor maps the CLI spelling to an Anchor. Unknown values fall
// back to bottom-right, matching the original tool.
func ParseAnchor(s string) Anchor {
	switch strings.ToLower(s) {
	case "top-left":
		return AnchorTopLeft
	case "top-right":
		return AnchorTopRight
	case "bottom-left":
		return AnchorBottomLeft
	case "center":
		return AnchorCenter
	default:
		return AnchorBottomRight
	}
}

// WatermarkSpec overlays an image after the composition mode is applied.
type WatermarkSpec struct {
	Path          string
	ScaleFraction float64 // watermark width as a fraction of target width
	Opacity       float64 // alpha multiplier in (0, 1]
	Anchor        Anchor
}

// AudioSpec describes background music handling for one output.
type AudioSpec struct {
	BGMPath          string
	PreserveOriginal bool
	Volume           float64
	TrimToVideo      bool
	LoopIfShorter    bool
}

// FilterGraphSpec is the declarative composition description consumed
// by the external encoder. At most one composition mode is active;
// watermark and audio are independently optional.
type FilterGraphSpec struct {
	Mode           ComposeMode
	BlurStrength   int
	LetterboxColor string // hex, e.g. "#000000"
	// ZoomFactor is accepted for the zoom-crop mode but does not change
	// the crop math beyond height-matching. The original tool shipped
	// with this simplification and it is preserved here on purpose.
	ZoomFactor float64
	Watermark  *WatermarkSpec
	Audio      *AudioSpec
}

// ConvertInput feeds the portrait-conversion stage for a single item.
type ConvertInput struct {
	Item         MediaItem
	Graph        FilterGraphSpec
	TargetWidth  int
	TargetHeight int
	OutputPath   string
	WorkDir      string
}

// ConvertOutput reports one converted item.
type ConvertOutput struct {
	OutputPath string
	Attempts   []EncodeAttempt
	Degraded   bool
	Message    string
}

// =============================================================================
// Encode Types
// =============================================================================

// AttemptStage identifies a rung of the fallback cascade.
type AttemptStage int

const (
	StagePrimary AttemptStage = iota
	StageFallback
	StageLastResort
)

// String returns the cascade stage name used in diagnostics.
func (s AttemptStage) String() string {
	switch s {
	case StagePrimary:
		return "primary"
	case StageFallback:
		return "fallback"
	case StageLastResort:
		return "last-resort"
	default:
		return "unknown"
	}
}

// EncodeAttempt records one cascade strategy run. Ephemeral; produced
// during the encode stage and surfaced only through diagnostics.
type EncodeAttempt struct {
	Stage      AttemptStage
	Command    string
	Succeeded  bool
	Diagnostic string
}

// CascadeDiagnostics concatenates every failed attempt's diagnostic in
// attempt order, for the terminal failure message.
func CascadeDiagnostics(attempts []EncodeAttempt) string {
	var b strings.Builder
	for _, a := range attempts {
		if a.Succeeded {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] %s", a.Stage, a.Diagnostic)
	}
	return b.String()
}

// EncodeInput feeds the slideshow encode cascade.
type EncodeInput struct {
	RawArtifactPath string
	OutputPath      string
	BGMPath         string
	WorkDir         string
}

// EncodeOutput reports the final artifact.
type EncodeOutput struct {
	OutputPath string
	Attempts   []EncodeAttempt
	Degraded   bool
	Message    string
}

// =============================================================================
// Job Result
// =============================================================================

// JobResult is the terminal value delivered to the caller exactly once.
type JobResult struct {
	OutputPath string
	Succeeded  bool
	Stopped    bool
	Message    string
}
