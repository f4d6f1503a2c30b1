// Package configstore owns the single on-disk JSON document the server is
// allowed to touch. All reads and writes of the guarded file go through the
// Store; no other component opens the file directly.
package configstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/logging"
	"github.com/Benggoy/f5-on-DPU-roi-config/pkg/fileops"

	"github.com/tidwall/gjson"
)

var (
	// ErrSectionNotFound indicates the requested top-level section does not
	// exist in the document.
	ErrSectionNotFound = errors.New("section not found")

	// ErrPathViolation indicates an attempt to reference anything outside
	// the single guarded file, such as traversal sequences in a section
	// name or lookup metacharacters that would reach into nested values.
	ErrPathViolation = errors.New("access outside the allowed config file")

	// ErrInvalidDocument indicates the bytes are not a valid JSON object.
	ErrInvalidDocument = errors.New("document is not a valid JSON object")
)

// Info describes the guarded file for the status tool.
type Info struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Store provides exclusive access to the guarded JSON file. The path is
// fixed at construction and never parameterized by caller input.
type Store struct {
	path   string
	logger *logging.AppLogger

	// mu serializes snapshot+write sequences so two writers never
	// interleave. Reads take it too; file reads are cheap.
	mu sync.Mutex
}

// NewStore creates a Store for the given file path after validating it.
func NewStore(path string, logger *logging.AppLogger) (*Store, error) {
	if err := validateStorePath(path); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	return &Store{
		path:   path,
		logger: logger,
	}, nil
}

// validateStorePath enforces the single-file contract at construction time.
func validateStorePath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute")
	}
	if filepath.Ext(path) != ".json" {
		return fmt.Errorf("path must point to a .json file")
	}
	return fileops.ValidatePathSecurity(path)
}

// Path returns the guarded file's path.
func (s *Store) Path() string {
	return s.path
}

// Stat reports existence and metadata of the guarded file.
func (s *Store) Stat() Info {
	info := Info{Path: s.path}

	stat, err := os.Stat(s.path)
	if err != nil {
		return info
	}

	info.Exists = true
	info.Size = stat.Size()
	info.ModTime = stat.ModTime()
	return info
}

// ReadAll returns the full document bytes.
func (s *Store) ReadAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *Store) readLocked() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, s.path)
	}

	return data, nil
}

// ReadSection returns the value stored at the given top-level section.
// Well-known aliases are resolved first; the synthetic "metadata" section
// is assembled from the document's version and lastUpdated fields.
func (s *Store) ReadSection(name string) ([]byte, error) {
	if err := ValidateSectionName(name); err != nil {
		return nil, err
	}

	data, err := s.ReadAll()
	if err != nil {
		return nil, err
	}

	if name == metadataSection {
		return synthesizeMetadata(data)
	}

	resolved := resolveSectionName(name)
	value := gjson.GetBytes(data, escapeGJSONPath(resolved))
	if !value.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, name)
	}

	return []byte(value.Raw), nil
}

// Hash returns a short fingerprint of the file contents: the first 12 hex
// characters of its SHA-256. Empty string when the file does not exist.
func (s *Store) Hash() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}

// Version returns the document's top-level version field, or "N/A".
func (s *Store) Version() string {
	data, err := s.ReadAll()
	if err != nil {
		return "N/A"
	}
	if v := gjson.GetBytes(data, "version"); v.Exists() {
		return v.String()
	}
	return "N/A"
}

// SectionCount returns the number of top-level sections in the document.
func (s *Store) SectionCount() int {
	data, err := s.ReadAll()
	if err != nil {
		return 0
	}

	count := 0
	gjson.ParseBytes(data).ForEach(func(_, _ gjson.Result) bool {
		count++
		return true
	})
	return count
}

// Replace atomically writes doc as the new file contents. The snapshot
// callback receives the current bytes first and MUST succeed before any
// write happens; a snapshot failure aborts the replace with the file left
// byte-identical. The store lock is held across snapshot+write.
//
// A missing file is treated as an empty document so first writes still
// produce a backup of the prior (empty) state.
func (s *Store) Replace(doc []byte, snapshot func(current []byte) error) error {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return fmt.Errorf("%w: refusing to write", ErrInvalidDocument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read current contents: %w", err)
		}
		current = []byte{}
	}

	if snapshot != nil {
		if err := snapshot(current); err != nil {
			s.logger.Error("Backup failed, aborting write", "error", err)
			return fmt.Errorf("backup failed, write aborted: %w", err)
		}
	}

	if err := fileops.AtomicWriteFile(s.path, doc, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	s.logger.Debug("Config file replaced", "path", s.path, "bytes", len(doc))
	return nil
}
