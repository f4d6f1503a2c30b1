// Package backup writes timestamped pre-write snapshots of the guarded
// config file. Backups are created once per successful write, never mutated
// and never deleted by the server.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/logging"
	"github.com/Benggoy/f5-on-DPU-roi-config/pkg/fileops"
)

// timestampLayout produces sortable backup suffixes.
const timestampLayout = "20060102-150405"

// Record describes one backup file on disk.
type Record struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Manager creates and lists snapshots for a single guarded file.
type Manager struct {
	dir    string // directory backups are written to
	stem   string // config file name without extension
	logger *logging.AppLogger

	// now is swappable for tests
	now func() time.Time
}

// NewManager creates a Manager that stores backups of configFile in dir.
func NewManager(configFile, dir string, logger *logging.AppLogger) (*Manager, error) {
	if err := fileops.ValidatePathSecurity(dir); err != nil {
		return nil, fmt.Errorf("invalid backup directory: %w", err)
	}

	base := filepath.Base(configFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return nil, fmt.Errorf("cannot derive backup name from %q", configFile)
	}

	return &Manager{
		dir:    dir,
		stem:   stem,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Snapshot writes current to a new timestamped backup file and returns its
// path. The file is created exclusively; if two snapshots land in the same
// second a numeric suffix disambiguates them.
func (m *Manager) Snapshot(current []byte) (string, error) {
	if err := fileops.EnsureDirectoryExists(m.dir); err != nil {
		return "", fmt.Errorf("backup directory unavailable: %w", err)
	}

	stamp := m.now().Format(timestampLayout)
	path := filepath.Join(m.dir, fmt.Sprintf("%s.backup-%s.json", m.stem, stamp))

	for i := 1; ; i++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if err == nil {
			if _, werr := f.Write(current); werr != nil {
				f.Close()
				os.Remove(path)
				return "", fmt.Errorf("failed to write backup: %w", werr)
			}
			if serr := f.Sync(); serr != nil {
				f.Close()
				os.Remove(path)
				return "", fmt.Errorf("failed to sync backup: %w", serr)
			}
			if cerr := f.Close(); cerr != nil {
				return "", fmt.Errorf("failed to close backup: %w", cerr)
			}

			m.logger.Debug("Backup written", "path", path, "bytes", len(current))
			return path, nil
		}

		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create backup file: %w", err)
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s.backup-%s-%d.json", m.stem, stamp, i))
	}
}

// List returns all backups of the guarded file, oldest first.
func (m *Manager) List() ([]Record, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	prefix := m.stem + ".backup-"
	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		records = append(records, Record{
			Name:    name,
			Path:    filepath.Join(m.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Timestamp suffixes sort lexically in chronological order
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return records, nil
}
