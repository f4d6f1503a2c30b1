package backup

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/logging"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	dir := t.TempDir()
	logger, _ := logging.NewTestLogger()
	m, err := NewManager(filepath.Join(dir, "roi-config.json"), dir, logger)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m, dir
}

func TestNewManager(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	t.Run("traversal in backup dir rejected", func(t *testing.T) {
		_, err := NewManager("/home/user/roi-config.json", "/home/user/../../etc", logger)
		if err == nil {
			t.Error("Expected error for traversal in backup dir")
		}
	})

	t.Run("empty stem rejected", func(t *testing.T) {
		_, err := NewManager(".json", t.TempDir(), logger)
		if err == nil {
			t.Error("Expected error for empty stem")
		}
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("writes timestamped copy", func(t *testing.T) {
		m, _ := newTestManager(t)
		content := []byte(`{"version":"1.0.0"}`)

		path, err := m.Snapshot(content)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}

		pattern := regexp.MustCompile(`^roi-config\.backup-\d{8}-\d{6}\.json$`)
		if !pattern.MatchString(filepath.Base(path)) {
			t.Errorf("Backup name %q does not match expected pattern", filepath.Base(path))
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read backup: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("Backup bytes differ from snapshot input")
		}
	})

	t.Run("empty prior content", func(t *testing.T) {
		m, _ := newTestManager(t)

		path, err := m.Snapshot([]byte{})
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("Expected empty backup, got %d bytes", info.Size())
		}
	})

	t.Run("same-second snapshots get distinct names", func(t *testing.T) {
		m, _ := newTestManager(t)
		fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return fixed }

		first, err := m.Snapshot([]byte("a"))
		if err != nil {
			t.Fatalf("First snapshot failed: %v", err)
		}
		second, err := m.Snapshot([]byte("b"))
		if err != nil {
			t.Fatalf("Second snapshot failed: %v", err)
		}
		if first == second {
			t.Error("Expected distinct backup paths for same-second snapshots")
		}
	})

	t.Run("unwritable directory fails", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("running as root, permission checks are bypassed")
		}

		dir := t.TempDir()
		logger, _ := logging.NewTestLogger()
		m, err := NewManager(filepath.Join(dir, "roi-config.json"), dir, logger)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		if err := os.Chmod(dir, 0500); err != nil {
			t.Fatalf("Chmod failed: %v", err)
		}
		t.Cleanup(func() { os.Chmod(dir, 0755) })

		if _, err := m.Snapshot([]byte("x")); err == nil {
			t.Error("Expected error for unwritable backup directory")
		}
	})
}

func TestList(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		m, _ := newTestManager(t)

		records, err := m.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected no records, got %d", len(records))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		logger, _ := logging.NewTestLogger()
		m, err := NewManager("/home/user/roi-config.json", filepath.Join(t.TempDir(), "missing"), logger)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if records != nil {
			t.Errorf("Expected nil records, got %v", records)
		}
	})

	t.Run("returns oldest first and skips foreign files", func(t *testing.T) {
		m, dir := newTestManager(t)

		names := []string{
			"roi-config.backup-20250301-120000.json",
			"roi-config.backup-20250102-090000.json",
			"unrelated.txt",
			"other-config.backup-20250101-000000.json",
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
				t.Fatalf("Failed to seed %s: %v", name, err)
			}
		}

		records, err := m.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}
		if records[0].Name != "roi-config.backup-20250102-090000.json" {
			t.Errorf("Expected oldest backup first, got %s", records[0].Name)
		}
	})
}
