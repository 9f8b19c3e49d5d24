// Package fileurl holds small filesystem path helpers.
package fileurl

import (
	"os"
	"path/filepath"
)

// GetExePath returns the directory of the running binary.
func GetExePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// IsExist reports whether path exists.
func IsExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil || os.IsExist(err)
}

// CreatePath creates the parent directory chain for a file path.
func CreatePath(path string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(path), perm)
}
