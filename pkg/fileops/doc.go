// Package fileops provides secure, atomic file operations for the config
// guard.
//
// The package combines atomic write primitives with static path validation
// so callers can enforce the single-file access boundary before any bytes
// touch disk.
//
// # Atomic Operations
//
// Use AtomicWriteFile() for writes that must never leave a partially
// written file behind:
//
//	err := fileops.AtomicWriteFile(path, data, 0644)
//	// Destination appears atomically or remains unchanged on failure
//
// # Path Validation
//
// ValidatePathSecurity() performs static analysis of a path (no filesystem
// access) and rejects traversal sequences and reserved system locations.
package fileops
