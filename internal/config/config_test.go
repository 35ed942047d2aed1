package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardpress/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "cardpress", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.ArtworkDir != filepath.Join(tempHome, "cardpress", "artwork") {
		t.Fatalf("unexpected artwork dir: %q", cfg.Paths.ArtworkDir)
	}
	if cfg.Workflow.FromScratch {
		t.Fatal("expected from_scratch disabled by default")
	}
	if len(cfg.Sets.Languages) != 1 || cfg.Sets.Languages[0] != "English" {
		t.Fatalf("unexpected default languages: %v", cfg.Sets.Languages)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.SnapshotDir, cfg.Paths.CacheDir, cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.ArtworkDir); !os.IsNotExist(err) {
		t.Fatal("artwork dir must not be auto-created")
	}
}

func TestLoadParsesFileAndNormalizesLanguages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
artwork_dir = "` + dir + `/art"
output_dir = "` + dir + `/out"

[sets]
ids = [" core ", ""]
languages = ["en", "de"]

[outputs]
enabled = ["PDF", "pdf", "db"]

[pdf]
page_formats = ["A4"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if len(cfg.Sets.IDs) != 1 || cfg.Sets.IDs[0] != "core" {
		t.Fatalf("unexpected set ids: %v", cfg.Sets.IDs)
	}
	if len(cfg.Sets.Languages) != 2 || cfg.Sets.Languages[0] != "English" || cfg.Sets.Languages[1] != "German" {
		t.Fatalf("unexpected languages: %v", cfg.Sets.Languages)
	}
	if len(cfg.Outputs.Enabled) != 2 {
		t.Fatalf("expected deduplicated outputs, got %v", cfg.Outputs.Enabled)
	}
	if len(cfg.PDF.PageFormats) != 1 || cfg.PDF.PageFormats[0] != "a4" {
		t.Fatalf("unexpected page formats: %v", cfg.PDF.PageFormats)
	}
}

func TestCanonicalLanguages(t *testing.T) {
	got := config.CanonicalLanguages([]string{"en", " de ", "", "Spanish"})
	want := []string{"English", "German", "Spanish"}
	if len(got) != len(want) {
		t.Fatalf("languages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("language %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidateRejectsUnknownOutput(t *testing.T) {
	cfg := config.Default()
	cfg.Outputs.Enabled = []string{"ftp"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown output") {
		t.Fatalf("expected unknown output error, got %v", err)
	}
}

func TestValidateRequiresGameIDForOctgn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[outputs]
enabled = ["octgn"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "game_id") {
		t.Fatalf("expected game_id error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "[outputs]") {
		t.Fatal("sample config missing outputs section")
	}
}
