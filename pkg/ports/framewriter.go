package ports

import (
	"errors"
	"image"
)

// ErrWriterUnavailable is returned when no frame writer could be
// opened, neither the primary codec nor the fallback.
var ErrWriterUnavailable = errors.New("no frame writer available")

// FrameWriterOpener opens a raw-artifact writer for a render job.
// Implementations may fail to open (missing codec, missing tool); the
// sequencer tries openers in preference order.
type FrameWriterOpener interface {
	// Open starts a new raw video container at path with the given
	// geometry and frame rate.
	Open(path string, width, height int, fps float64) (FrameWriter, error)

	// Codec returns the codec identifier this opener produces.
	Codec() string
}

// FrameWriter streams frames into a raw intermediate container.
type FrameWriter interface {
	// WriteFrame appends one frame. Frames must match the dimensions
	// passed to Open.
	WriteFrame(img image.Image) error

	// Close finalizes the container. The artifact is only valid after
	// Close returns nil.
	Close() error
}
