package config

import (
	"errors"
	"fmt"
)

var knownOutputs = map[string]struct{}{
	"db":    {},
	"octgn": {},
	"pdf":   {},
	"mpc":   {},
	"dtc":   {},
}

var knownArchiveFormats = map[string]struct{}{
	"zip":  {},
	"tzst": {},
}

var knownPageFormats = map[string]struct{}{
	"a4":     {},
	"letter": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOutputs(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validatePDF(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ArtworkDir == "" {
		return errors.New("paths.artwork_dir must be set")
	}
	if c.Paths.SnapshotDir == "" {
		return errors.New("paths.snapshot_dir must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateOutputs() error {
	for _, out := range c.Outputs.Enabled {
		if _, ok := knownOutputs[out]; !ok {
			return fmt.Errorf("outputs.enabled: unknown output %q", out)
		}
	}
	for _, format := range c.Outputs.MPCFormats {
		if _, ok := knownArchiveFormats[format]; !ok {
			return fmt.Errorf("outputs.mpc_formats: unknown archive format %q", format)
		}
	}
	for _, format := range c.Outputs.DTCFormats {
		if _, ok := knownArchiveFormats[format]; !ok {
			return fmt.Errorf("outputs.dtc_formats: unknown archive format %q", format)
		}
	}
	if c.OutputEnabled("octgn") && c.Outputs.GameID == "" {
		return errors.New("outputs.game_id is required for the octgn output")
	}
	if c.OutputEnabled("mpc") && len(c.Outputs.MPCFormats) == 0 {
		return errors.New("outputs.mpc_formats must name at least one archive format")
	}
	if c.OutputEnabled("dtc") && len(c.Outputs.DTCFormats) == 0 {
		return errors.New("outputs.dtc_formats must name at least one archive format")
	}
	return nil
}

func (c *Config) validateTools() error {
	needsGimp := c.OutputEnabled("db") || c.OutputEnabled("pdf") ||
		c.OutputEnabled("mpc") || c.OutputEnabled("dtc")
	if needsGimp && c.Tools.GimpPath == "" {
		return errors.New("tools.gimp_path must be set when image outputs are enabled")
	}
	if c.OutputEnabled("dtc") && c.Tools.MagickPath == "" {
		return errors.New("tools.magick_path must be set for the dtc output")
	}
	return nil
}

func (c *Config) validatePDF() error {
	if !c.OutputEnabled("pdf") {
		return nil
	}
	if len(c.PDF.PageFormats) == 0 {
		return errors.New("pdf.page_formats must name at least one page size")
	}
	for _, format := range c.PDF.PageFormats {
		if _, ok := knownPageFormats[format]; !ok {
			return fmt.Errorf("pdf.page_formats: unknown page size %q", format)
		}
	}
	return nil
}
