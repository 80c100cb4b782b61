package mocks

import (
	"sync"

	"github.com/user/slidecast/pkg/ports"
)

// ProgressUpdate is one recorded Progress invocation.
type ProgressUpdate struct {
	Percent int
	Status  string
}

// ProgressSink is a mock implementation of ports.ProgressSink that
// records every notification.
type ProgressSink struct {
	mu        sync.Mutex
	updates   []ProgressUpdate
	doneCount int
	succeeded bool
	message   string
}

// NewProgressSink creates a new mock ProgressSink.
func NewProgressSink() *ProgressSink {
	return &ProgressSink{}
}

func (m *ProgressSink) Progress(percent int, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, ProgressUpdate{Percent: percent, Status: status})
}

func (m *ProgressSink) Done(succeeded bool, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doneCount++
	m.succeeded = succeeded
	m.message = message
}

// Updates returns the recorded progress notifications.
func (m *ProgressSink) Updates() []ProgressUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ProgressUpdate, len(m.updates))
	copy(out, m.updates)
	return out
}

// DoneCount returns how many times Done was invoked.
func (m *ProgressSink) DoneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doneCount
}

// Result returns the last terminal notification.
func (m *ProgressSink) Result() (succeeded bool, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.succeeded, m.message
}

var _ ports.ProgressSink = (*ProgressSink)(nil)
