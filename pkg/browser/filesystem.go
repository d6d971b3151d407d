package browser

import (
	"io"
	"io/fs"
	"os"
)

// FileSystem is the directory access the browser needs. ReadDir must return
// entries in the order the underlying filesystem yields them.
type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
}

// OSFileSystem reads the local filesystem without sorting.
type OSFileSystem struct{}

// ReadDir lists path in directory order. os.ReadDir would sort by name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}

// Stat follows symlinks.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Open opens a file for reading.
func (OSFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
