package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardpress/internal/config"
	"cardpress/internal/runlog"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *runlog.Store
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ArtworkDir = filepath.Join(base, "artwork")
	cfgVal.Paths.BacksDir = filepath.Join(base, "backs")
	cfgVal.Paths.SnapshotDir = filepath.Join(base, "snapshots")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sheet.Path = filepath.Join(base, "cards.xlsx")
	cfgVal.Outputs.GameID = "a21af4e8-be4b-4cda-a6b6-534f9717391f"

	configPath := filepath.Join(base, "cardpress.toml")
	writeTestConfig(t, configPath, &cfgVal)

	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := runlog.Open(&cfgVal)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	return &cliTestEnv{
		cfg:        &cfgVal,
		store:      store,
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
artwork_dir = %q
backs_dir = %q
snapshot_dir = %q
cache_dir = %q
staging_dir = %q
output_dir = %q
log_dir = %q

[sheet]
path = %q

[outputs]
game_id = %q
`,
		cfg.Paths.ArtworkDir,
		cfg.Paths.BacksDir,
		cfg.Paths.SnapshotDir,
		cfg.Paths.CacheDir,
		cfg.Paths.StagingDir,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Sheet.Path,
		cfg.Outputs.GameID,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
