package document

import (
	"errors"
	"fmt"
	"os"
)

// MaxFileSize is the largest file (in bytes) the editor will open.
const MaxFileSize int64 = 1 << 20 // 1 MB

// ErrTooLarge is returned when a file exceeds MaxFileSize.
var ErrTooLarge = errors.New("file too large to edit")

// Store reads and writes whole files.
type Store interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// LocalStore reads and writes the local filesystem.
type LocalStore struct{}

// ReadFile reads path, refusing files larger than MaxFileSize.
func (LocalStore) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, info.Size())
	}
	return os.ReadFile(path)
}

// WriteFile writes data to path, creating it with mode 0644 if needed.
func (LocalStore) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
