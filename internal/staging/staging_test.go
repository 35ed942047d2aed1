package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cardpress/internal/logging"
)

func TestCreateResetsLeftovers(t *testing.T) {
	root := t.TempDir()
	dir, err := Create(root, "mpc", "core", "English")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(dir) != "mpc.core.English" {
		t.Errorf("dir = %s", dir)
	}
	if err := os.WriteFile(filepath.Join(dir, "leftover.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	again, err := Create(root, "mpc", "core", "English")
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	entries, err := os.ReadDir(again)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover content survived: %v", entries)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	dir, err := Create(root, "pdf", "core", "German")
	if err != nil {
		t.Fatal(err)
	}
	if err := Remove(root, "pdf", "core", "German"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory survived removal")
	}
}

func TestCleanStale(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "mpc.core.English")
	fresh := filepath.Join(root, "pdf.core.English")
	for _, dir := range []string{stale, fresh} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	result := CleanStale(root, 24*time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("errors = %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Errorf("removed = %v", result.Removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh directory removed")
	}
}

func TestCleanStaleMissingRoot(t *testing.T) {
	result := CleanStale(filepath.Join(t.TempDir(), "nope"), time.Hour, logging.NewNop())
	if len(result.Errors) != 0 || len(result.Removed) != 0 {
		t.Errorf("result = %+v", result)
	}
}
