// Package progress provides ProgressSink implementations.
package progress

import (
	"github.com/user/slidecast/pkg/ports"
)

// Console forwards job progress to a logger.
type Console struct {
	logger ports.Logger
}

// NewConsole creates a sink that logs progress updates.
func NewConsole(logger ports.Logger) *Console {
	return &Console{logger: logger.WithComponent("progress")}
}

// Progress logs an intermediate update.
func (c *Console) Progress(percent int, status string) {
	c.logger.Info("[%3d%%] %s", percent, status)
}

// Done logs the terminal outcome.
func (c *Console) Done(succeeded bool, message string) {
	if succeeded {
		c.logger.Info("Done: %s", message)
		return
	}
	c.logger.Error("Failed: %s", message)
}

// Noop discards all progress updates.
type Noop struct{}

// NewNoop creates a sink that discards everything.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Progress(percent int, status string) {}

func (n *Noop) Done(succeeded bool, message string) {}

var (
	_ ports.ProgressSink = (*Console)(nil)
	_ ports.ProgressSink = (*Noop)(nil)
)
