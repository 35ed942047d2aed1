package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"cardpress/internal/config"
	"cardpress/internal/imagepool"
	"cardpress/internal/logging"
	"cardpress/internal/runlog"
	"cardpress/internal/services/gimp"
	"cardpress/internal/services/magick"
	"cardpress/internal/sheet"
	"cardpress/internal/workflow"
)

// applyRunOverrides folds run flags into the loaded configuration. Language
// overrides go through the same canonicalization as configuration loading,
// so a flag-driven run keys snapshots and outputs identically to a
// config-driven one.
func applyRunOverrides(cfg *config.Config, fromScratch bool, setIDs, languages []string) {
	if fromScratch {
		cfg.Workflow.FromScratch = true
	}
	if len(setIDs) > 0 {
		cfg.Sets.IDs = setIDs
	}
	if langs := config.CanonicalLanguages(languages); len(langs) > 0 {
		cfg.Sets.Languages = langs
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var fromScratch bool
	var noDownload bool
	var skipHealthCheck bool
	var setIDs []string
	var languages []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the configured sets end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyRunOverrides(cfg, fromScratch, setIDs, languages)
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "cardpress.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run is already active (lock %s)", lock.Path())
			}
			defer lock.Unlock()

			logger, err := logging.NewForRun(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Sheet.DownloadURL != "" && !noDownload {
				timeout := time.Duration(cfg.Sheet.DownloadTimeout) * time.Second
				logger.Info("downloading card data workbook",
					logging.String("url", cfg.Sheet.DownloadURL),
					logging.String("path", cfg.Sheet.Path))
				if err := sheet.Download(runCtx, cfg.Sheet.DownloadURL, cfg.Sheet.Path, timeout); err != nil {
					return fmt.Errorf("download card data workbook: %w", err)
				}
			}

			workbook, err := sheet.Open(cfg.Sheet.Path)
			if err != nil {
				return fmt.Errorf("open card data workbook: %w", err)
			}
			defer workbook.Close()

			renderer, err := gimp.New(cfg.Tools.GimpPath, cfg.Tools.RenderTimeout)
			if err != nil {
				return fmt.Errorf("configure renderer: %w", err)
			}
			converter, err := magick.New(cfg.Tools.MagickPath, cfg.Tools.ConvertTimeout)
			if err != nil {
				return fmt.Errorf("configure converter: %w", err)
			}

			store, err := runlog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			cache := imagepool.NewCache()
			manager := workflow.NewManager(cfg, store, workbook, cache,
				workflow.NewFingerprinter(cfg, workbook, logger),
				workflow.NewRenderer(cfg, renderer, logger),
				workflow.NewPackager(cfg, converter, cache, logger),
				logger)

			if !skipHealthCheck {
				for _, health := range manager.HealthCheck(runCtx) {
					if !health.Ready {
						return fmt.Errorf("stage %s is not ready: %s", health.Name, health.Detail)
					}
				}
			}

			summary, err := manager.Run(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed %d pair(s)", summary.Completed)
			if summary.Failed > 0 {
				fmt.Fprintf(out, ", %d failed", summary.Failed)
			}
			if summary.Review > 0 {
				fmt.Fprintf(out, ", %d need review", summary.Review)
			}
			fmt.Fprintln(out)
			if summary.Failed > 0 || summary.Review > 0 {
				fmt.Fprintln(out, "Inspect pairs with `cardpress queue list --status failed --status review`.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromScratch, "from-scratch", false, "Discard prior snapshots and reprocess everything")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "Skip the workbook download even when a URL is configured")
	cmd.Flags().BoolVar(&skipHealthCheck, "skip-health-check", false, "Run even when a stage reports missing prerequisites")
	cmd.Flags().StringSliceVar(&setIDs, "set", nil, "Set id to process (repeatable; overrides the configuration)")
	cmd.Flags().StringSliceVar(&languages, "language", nil, "Language to process (repeatable; overrides the configuration)")
	return cmd
}
