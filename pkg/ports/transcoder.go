package ports

import (
	"context"
	"fmt"
	"strings"
)

// Transcoder abstracts the external encoder process. A non-zero exit
// status surfaces as *ExecError carrying the captured stderr text.
type Transcoder interface {
	// Transcode runs one encode/mux invocation with the given
	// command-line arguments.
	Transcode(ctx context.Context, args []string) error

	// Available reports whether the external encoder can be invoked at
	// all.
	Available() bool
}

// Prober abstracts the external media prober.
type Prober interface {
	// Duration returns the duration of a media file in seconds.
	Duration(ctx context.Context, path string) (float64, error)

	// Dimensions returns the pixel geometry of a media file.
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// ExecError is a failed external command invocation. The stderr text is
// the diagnostic payload surfaced verbatim through the fallback cascade.
type ExecError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %s: %v\nstderr: %s", e.Name, strings.Join(e.Args, " "), e.Err, e.Stderr)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the stderr payload, falling back to the wrapped
// error text when the process produced no output.
func (e *ExecError) Diagnostic() string {
	if strings.TrimSpace(e.Stderr) != "" {
		return e.Stderr
	}
	return e.Err.Error()
}
