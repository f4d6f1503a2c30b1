package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ValidatePathSecurity performs static security validation on a file path.
// It checks for path traversal attempts and dangerous path patterns without
// touching the filesystem.
//
// The function validates:
//   - Empty or whitespace-only paths
//   - Path traversal attempts using ".." sequences, both raw and cleaned
//   - Absolute paths that resolve into reserved system directories
//
// Symlink resolution is deliberately not performed here; callers that need
// it should resolve the path first.
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Check for path traversal in raw input
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Clean and re-check for traversal
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	if filepath.IsAbs(path) && IsReservedDirectory(cleanPath) {
		return fmt.Errorf("path is in a reserved system directory")
	}

	return nil
}

// IsReservedDirectory reports whether the path is, or lives under, a system
// directory that should never hold user configuration.
func IsReservedDirectory(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true // If we can't resolve it, treat as reserved
	}
	absPath = filepath.Clean(absPath)

	// Always treat root as reserved
	if absPath == "/" || absPath == "\\" || absPath == "C:\\" {
		return true
	}

	for _, reserved := range reservedDirectories() {
		if strings.EqualFold(absPath, reserved) {
			return true
		}

		reservedPrefix := strings.ToLower(reserved) + string(os.PathSeparator)
		if strings.HasPrefix(strings.ToLower(absPath), reservedPrefix) {
			// Exception: user temp directories under /tmp and friends
			if isUserTempDirectory(absPath) {
				continue
			}
			return true
		}
	}

	return false
}

// reservedDirectories returns platform-specific reserved directories.
func reservedDirectories() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			"C:\\Windows",
			"C:\\Program Files",
			"C:\\Program Files (x86)",
			"C:\\System32",
		}

	case "darwin":
		return []string{
			"/System",
			"/usr/bin",
			"/usr/sbin",
			"/bin",
			"/sbin",
			"/etc",
			"/var/log",
			"/var/db",
			"/var/root",
			"/Library/System",
			"/private/etc",
		}

	default: // Linux and other Unix
		return []string{
			"/bin",
			"/sbin",
			"/usr/bin",
			"/usr/sbin",
			"/etc",
			"/boot",
			"/dev",
			"/proc",
			"/sys",
			"/var/log",
			"/var/lib",
			"/root",
		}
	}
}

// isUserTempDirectory detects legitimate user temp directories that live
// under otherwise reserved prefixes (macOS puts them under /var/folders).
func isUserTempDirectory(path string) bool {
	if runtime.GOOS == "darwin" && strings.Contains(path, "/var/folders/") {
		return true
	}

	if runtime.GOOS == "linux" {
		if strings.HasPrefix(path, "/tmp/") || path == "/tmp" {
			return true
		}
	}

	systemTemp := filepath.Clean(os.TempDir())
	return strings.HasPrefix(filepath.Clean(path), systemTemp)
}
