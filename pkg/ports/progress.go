package ports

// ProgressSink receives progress and completion notifications from the
// render worker. It is owned by the caller (CLI or embedding app) and
// must be safe to invoke from a goroutine other than the caller's.
type ProgressSink interface {
	// Progress reports completion percent (0-100) and a status line.
	// Delivery is throttled by the worker; receivers should not block.
	Progress(percent int, status string)

	// Done delivers the terminal outcome. Invoked exactly once per job.
	Done(succeeded bool, message string)
}
