package config

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSheet(); err != nil {
		return err
	}
	c.normalizeSets()
	c.normalizeOutputs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []*string{
		&c.Paths.ArtworkDir,
		&c.Paths.BacksDir,
		&c.Paths.SnapshotDir,
		&c.Paths.CacheDir,
		&c.Paths.StagingDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
		&c.Outputs.MPCInstructions,
		&c.Outputs.DTCInstructions,
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeSheet() error {
	c.Sheet.DownloadURL = strings.TrimSpace(c.Sheet.DownloadURL)
	trimmed := strings.TrimSpace(c.Sheet.Path)
	if trimmed == "" {
		c.Sheet.Path = ""
		return nil
	}
	expanded, err := expandPath(trimmed)
	if err != nil {
		return err
	}
	c.Sheet.Path = expanded
	if c.Sheet.DownloadTimeout <= 0 {
		c.Sheet.DownloadTimeout = defaultSheetTimeout
	}
	return nil
}

func (c *Config) normalizeSets() {
	ids := make([]string, 0, len(c.Sets.IDs))
	for _, id := range c.Sets.IDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	c.Sets.IDs = ids

	langs := CanonicalLanguages(c.Sets.Languages)
	if len(langs) == 0 {
		langs = []string{defaultDefaultLanguage}
	}
	c.Sets.Languages = langs
}

// CanonicalLanguages normalizes language values the way configuration
// loading does, dropping blanks. Anything that overrides Sets.Languages
// after Load must route through this so snapshot and output keys stay
// consistent between runs.
func CanonicalLanguages(values []string) []string {
	langs := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		langs = append(langs, canonicalLanguage(trimmed))
	}
	return langs
}

// canonicalLanguage maps tags like "en" or "es" onto the English display
// names the snapshot and sheet layers key on. Unrecognized values pass
// through with title casing so custom sheet tabs still line up.
func canonicalLanguage(value string) string {
	if tag, err := language.Parse(value); err == nil {
		if base, conf := tag.Base(); conf >= language.High {
			if name := languageNames[base.String()]; name != "" {
				return name
			}
		}
	}
	return cases.Title(language.English).String(strings.ToLower(value))
}

var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"pl": "Polish",
	"pt": "Portuguese",
}

func (c *Config) normalizeOutputs() {
	c.Outputs.Enabled = normalizeNameList(c.Outputs.Enabled)
	c.Outputs.MPCFormats = normalizeNameList(c.Outputs.MPCFormats)
	c.Outputs.DTCFormats = normalizeNameList(c.Outputs.DTCFormats)
	c.Outputs.GameID = strings.TrimSpace(c.Outputs.GameID)
	c.PDF.PageFormats = normalizeNameList(c.PDF.PageFormats)
}

func normalizeNameList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Workflow.StagingMaxAge <= 0 {
		c.Workflow.StagingMaxAge = defaultStagingMaxAge
	}
	if c.Tools.RenderTimeout <= 0 {
		c.Tools.RenderTimeout = defaultRenderTimeout
	}
	if c.Tools.ConvertTimeout <= 0 {
		c.Tools.ConvertTimeout = defaultConvertTimeout
	}
}
