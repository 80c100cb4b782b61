// Package smartwriter selects a raw-artifact writer by trying codec
// openers in preference order: H.264 first, Motion-JPEG second. Only
// when every opener fails does the render job die with
// ports.ErrWriterUnavailable.
package smartwriter

import (
	"fmt"

	"github.com/user/slidecast/pkg/adapters/h264writer"
	"github.com/user/slidecast/pkg/adapters/mjpegwriter"
	"github.com/user/slidecast/pkg/ports"
)

// Opener implements ports.FrameWriterOpener over an ordered opener list.
type Opener struct {
	openers []ports.FrameWriterOpener
	logger  ports.Logger

	// lastCodec records the codec that actually opened, for reporting.
	lastCodec string
}

// New creates an Opener with the default preference order. An empty
// ffmpegPath leaves binary discovery to the H.264 opener.
func New(logger ports.Logger, ffmpegPath string) *Opener {
	return &Opener{
		openers: []ports.FrameWriterOpener{
			&h264writer.Opener{FFmpegPath: ffmpegPath},
			mjpegwriter.NewOpener(),
		},
		logger: logger.WithComponent("writer"),
	}
}

// NewWithOpeners creates an Opener over an explicit opener list.
func NewWithOpeners(logger ports.Logger, openers ...ports.FrameWriterOpener) *Opener {
	return &Opener{
		openers: openers,
		logger:  logger.WithComponent("writer"),
	}
}

// Codec returns the codec of the most recently opened writer, or the
// preferred codec before any Open call.
func (o *Opener) Codec() string {
	if o.lastCodec != "" {
		return o.lastCodec
	}
	if len(o.openers) > 0 {
		return o.openers[0].Codec()
	}
	return ""
}

// Open tries each opener in order and returns the first writer that
// opens.
func (o *Opener) Open(path string, width, height int, fps float64) (ports.FrameWriter, error) {
	var errs []error
	for i, opener := range o.openers {
		w, err := opener.Open(path, width, height, fps)
		if err == nil {
			if i > 0 {
				o.logger.Warn("Primary codec unavailable, using %s", opener.Codec())
			}
			o.lastCodec = opener.Codec()
			return w, nil
		}
		o.logger.Debug("Opener %s failed: %s", opener.Codec(), err)
		errs = append(errs, fmt.Errorf("%s: %w", opener.Codec(), err))
	}

	return nil, fmt.Errorf("%w: %v", ports.ErrWriterUnavailable, errs)
}

var _ ports.FrameWriterOpener = (*Opener)(nil)
