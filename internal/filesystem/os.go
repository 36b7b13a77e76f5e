package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements the audit file system contract using operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether the path can be stat'ed. Any error, including permission errors, counts as absent.
func (fileSystem OSFileSystem) Exists(path string) bool {
	_, statError := fileSystem.Stat(path)
	return statError == nil
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file with the supplied permissions, creating parent directories as needed.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	if directoryError := os.MkdirAll(filepath.Dir(path), 0o755); directoryError != nil {
		return directoryError
	}
	return os.WriteFile(path, data, permissions)
}
