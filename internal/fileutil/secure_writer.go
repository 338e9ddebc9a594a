// Package fileutil provides secure file operation utilities
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// SecureFileWriter handles secure file operations with appropriate permissions
type SecureFileWriter struct {
	fileMode os.FileMode
	dirMode  os.FileMode
}

// NewSecureFileWriter creates a writer for sensitive files with restrictive permissions
func NewSecureFileWriter() *SecureFileWriter {
	return &SecureFileWriter{
		fileMode: 0600, // rw------- (owner read/write only)
		dirMode:  0700, // rwx------ (owner full access only)
	}
}

// OpenAppend opens path for appending, creating it and its parent
// directory owner-only. Existing files are tightened to the same mode.
func (w *SecureFileWriter) OpenAppend(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, w.dirMode); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, w.fileMode) //nolint:gosec // path is user supplied on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if err := w.EnsureSecurePermissions(path); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// EnsureSecurePermissions ensures existing file has secure permissions
func (w *SecureFileWriter) EnsureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Mode().Perm() != w.fileMode {
		if err := os.Chmod(path, w.fileMode); err != nil {
			return fmt.Errorf("failed to set secure permissions: %w", err)
		}
	}

	return nil
}
