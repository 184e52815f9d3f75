package utils

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultDirPermissions is the mode new destination directories get.
const DefaultDirPermissions = 0o755

// DirErrorKind tells a caller why a directory could not be prepared.
type DirErrorKind string

const (
	DirPermissionDenied DirErrorKind = "permission denied"
	DirIOError          DirErrorKind = "i/o error"
)

// DirError reports a failed EnsureDir.
type DirError struct {
	Kind DirErrorKind
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return "create directory '" + e.Path + "': " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *DirError) Unwrap() error { return e.Err }

// EnsureDir creates path and any missing parents. An existing directory is
// not an error; a failure is always a *DirError.
func EnsureDir(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(path, DefaultDirPermissions); err != nil {
		kind := DirIOError
		if errors.Is(err, fs.ErrPermission) {
			kind = DirPermissionDenied
		}
		return &DirError{Kind: kind, Path: path, Err: err}
	}
	return nil
}

// EnsureAbsPath returns path in absolute form for status lines. When the
// working directory is unknown the cleaned input is returned instead.
func EnsureAbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
