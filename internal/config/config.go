package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for the pipeline workspace.
type Paths struct {
	ArtworkDir  string `toml:"artwork_dir"`
	BacksDir    string `toml:"backs_dir"`
	SnapshotDir string `toml:"snapshot_dir"`
	CacheDir    string `toml:"cache_dir"`
	StagingDir  string `toml:"staging_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
}

// Sheet contains configuration for the card spreadsheet source.
type Sheet struct {
	Path            string `toml:"path"`
	DownloadURL     string `toml:"download_url"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Sets selects which set and language pairs a run covers.
type Sets struct {
	IDs       []string `toml:"ids"`
	Languages []string `toml:"languages"`
}

// Outputs selects which vendor artifacts a run produces.
type Outputs struct {
	Enabled         []string `toml:"enabled"`
	MPCFormats      []string `toml:"mpc_formats"`
	DTCFormats      []string `toml:"dtc_formats"`
	GameID          string   `toml:"game_id"`
	MPCInstructions string   `toml:"mpc_instructions"`
	DTCInstructions string   `toml:"dtc_instructions"`
}

// Tools contains configuration for the external image tools.
type Tools struct {
	GimpPath       string `toml:"gimp_path"`
	MagickPath     string `toml:"magick_path"`
	RenderTimeout  int    `toml:"render_timeout"`
	ConvertTimeout int    `toml:"convert_timeout"`
}

// PDF contains configuration for proof sheet documents.
type PDF struct {
	PageFormats []string `toml:"page_formats"`
}

// Workflow contains run behavior settings.
type Workflow struct {
	FromScratch   bool `toml:"from_scratch"`
	StagingMaxAge int  `toml:"staging_max_age_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cardpress.
//
// Configuration sections by subsystem:
//   - Paths: workspace directories (artwork, snapshots, caches, outputs)
//   - Sheet: card spreadsheet location and optional download URL
//   - Sets: set ids and languages a run covers
//   - Outputs: enabled vendor outputs and archive formats
//   - Tools: external renderer and converter binaries
//   - PDF: proof sheet page formats
//   - Workflow: run behavior (cold start, staging cleanup)
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sheet    Sheet    `toml:"sheet"`
	Sets     Sets     `toml:"sets"`
	Outputs  Outputs  `toml:"outputs"`
	Tools    Tools    `toml:"tools"`
	PDF      PDF      `toml:"pdf"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cardpress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cardpress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace directories a run writes into.
// ArtworkDir and BacksDir are inputs and intentionally not created here; a
// typo'd artwork path should surface as a missing-directory error, not an
// empty artwork pool.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.SnapshotDir,
		c.Paths.CacheDir,
		c.Paths.StagingDir,
		c.Paths.OutputDir,
		c.Paths.LogDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputEnabled reports whether the named vendor output was requested.
func (c *Config) OutputEnabled(name string) bool {
	for _, out := range c.Outputs.Enabled {
		if out == name {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
