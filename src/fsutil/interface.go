package fsutil

import "io"

// FileStore provides an interface for file system operations
type FileStore interface {
	// ReadFileAsStream opens a file and returns a reader
	ReadFileAsStream(path string) (io.ReadCloser, error)

	// ListFiles returns the regular files directly under dir whose name ends
	// with ext, sorted by name
	ListFiles(dir, ext string) ([]string, error)

	// MakeDirectory creates a new directory and all necessary parents
	MakeDirectory(path string) error

	// WriteFile replaces the contents of path
	WriteFile(path string, data []byte) error

	// GetFileStats returns the total count and size of files in a directory
	GetFileStats(path string) (count int, size int64, err error)
}
