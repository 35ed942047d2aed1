package config

const (
	defaultArtworkDir      = "~/cardpress/artwork"
	defaultBacksDir        = "~/cardpress/backs"
	defaultSnapshotDir     = "~/.local/share/cardpress/snapshots"
	defaultCacheDir        = "~/.local/share/cardpress/images"
	defaultStagingDir      = "~/.local/share/cardpress/staging"
	defaultOutputDir       = "~/cardpress/output"
	defaultLogDir          = "~/.local/share/cardpress/logs"
	defaultSheetPath       = "~/cardpress/cards.xlsx"
	defaultSheetTimeout    = 120
	defaultRenderTimeout   = 1800
	defaultConvertTimeout  = 600
	defaultStagingMaxAge   = 48
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultGimpBinary      = "gimp-console"
	defaultMagickBinary    = "magick"
	defaultDefaultLanguage = "English"
)

// DefaultOutputs is the full set of vendor outputs a run can produce.
var DefaultOutputs = []string{"db", "octgn", "pdf", "mpc", "dtc"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArtworkDir:  defaultArtworkDir,
			BacksDir:    defaultBacksDir,
			SnapshotDir: defaultSnapshotDir,
			CacheDir:    defaultCacheDir,
			StagingDir:  defaultStagingDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
		},
		Sheet: Sheet{
			Path:            defaultSheetPath,
			DownloadTimeout: defaultSheetTimeout,
		},
		Sets: Sets{
			Languages: []string{defaultDefaultLanguage},
		},
		Outputs: Outputs{
			Enabled:    append([]string(nil), DefaultOutputs...),
			MPCFormats: []string{"zip"},
			DTCFormats: []string{"zip"},
		},
		Tools: Tools{
			GimpPath:       defaultGimpBinary,
			MagickPath:     defaultMagickBinary,
			RenderTimeout:  defaultRenderTimeout,
			ConvertTimeout: defaultConvertTimeout,
		},
		PDF: PDF{
			PageFormats: []string{"a4", "letter"},
		},
		Workflow: Workflow{
			StagingMaxAge: defaultStagingMaxAge,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
