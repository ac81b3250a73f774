// Package loader reads configuration sources into nested maps.
//
// Each source yields a map[string]any keyed by section and setting name.
// Maps from several sources are combined with DeepMerge, later sources
// winning.
package loader

import (
	"io/fs"
	"os"
)

// Loader reads configuration from a source. A source that does not exist
// yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the file access a file loader needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
