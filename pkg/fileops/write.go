package fileops

import (
	"fmt"
	"io/fs"
	"os"
)

// AtomicWriteFile writes data to path atomically. The destination file
// either contains the full new contents or is left untouched - a crash
// mid-write never corrupts an existing file.
//
// The function uses a temporary file approach:
//  1. Writes all data to a temporary file next to the destination
//  2. Syncs data to disk to ensure durability
//  3. Atomically renames the temporary file over the destination
//
// Parameters:
//   - path: Absolute path to the destination file
//   - data: Full new file contents
//   - perm: Permission bits for a newly created destination
//
// Returns:
//   - error: Write, sync, or rename errors; the temporary file is cleaned
//     up on any failure
//
// Note: the path should be validated before calling this function; no
// traversal checks are performed here.
func AtomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	tempPath := path + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	// Ensure cleanup of temp file if anything goes wrong
	var writeSuccess bool
	defer func() {
		tempFile.Close()
		if !writeSuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close temp file before rename
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// Atomic rename - this is the atomic operation
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	writeSuccess = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parent
// directories. This is equivalent to `mkdir -p` and is safe to call
// multiple times. Directory permissions are set to 0755.
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
