package ports

// FileSystem abstracts file system operations. The encode cascade moves
// artifacts across directories and owns per-job temporary trees, so the
// interface covers rename-with-copy-fallback and recursive removal in
// addition to plain reads and writes.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories as
	// needed.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// MkdirTemp creates a fresh directory under the system temp root
	// with the given name prefix and returns its path.
	MkdirTemp(prefix string) (string, error)

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Rename moves a file. Implementations must fall back to
	// copy-and-delete when the rename crosses filesystems.
	Rename(oldPath, newPath string) error

	// Copy duplicates a file, leaving the source in place.
	Copy(srcPath, dstPath string) error

	// Remove deletes a file or empty directory.
	Remove(path string) error

	// RemoveAll deletes a path and everything below it.
	RemoveAll(path string) error
}
