package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"cardpress/internal/config"
	"cardpress/internal/fileutil"
	"cardpress/internal/identity"
	"cardpress/internal/logging"
	"cardpress/internal/runlog"
	"cardpress/internal/services"
	"cardpress/internal/sheet"
	"cardpress/internal/snapshot"
	"cardpress/internal/stage"
	"cardpress/internal/staging"
)

const stageFingerprint = "fingerprint"

// CardSource supplies set and card rows for a pair. *sheet.Workbook satisfies
// it.
type CardSource interface {
	FindSet(setID string) (sheet.SetRow, error)
	Cards(setID, language string) ([]snapshot.CardInfo, error)
}

// Fingerprinter builds the set document for a pair, fingerprints it against
// the prior snapshot, prunes stale rendered images, and stages the artwork of
// changed cards for the renderer.
type Fingerprinter struct {
	cfg    *config.Config
	source CardSource
	logger *slog.Logger
}

// NewFingerprinter constructs the fingerprinting stage.
func NewFingerprinter(cfg *config.Config, source CardSource, logger *slog.Logger) *Fingerprinter {
	return &Fingerprinter{
		cfg:    cfg,
		source: source,
		logger: logging.NewComponentLogger(logger, stageFingerprint),
	}
}

func (f *Fingerprinter) Prepare(ctx context.Context, item *runlog.Item) error {
	if err := stage.RequirePair(item, stageFingerprint); err != nil {
		return err
	}
	if err := f.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, stageFingerprint, "ensure directories", "", err)
	}
	return nil
}

func (f *Fingerprinter) Execute(ctx context.Context, item *runlog.Item) error {
	set, err := f.source.FindSet(item.SetID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, stageFingerprint, "look up set",
			"set is not present in the card data workbook", err)
	}
	item.SetName = set.Name

	cards, err := f.source.Cards(item.SetID, item.Language)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageFingerprint, "read card rows", "", err)
	}
	if len(cards) == 0 {
		return services.Wrap(services.ErrNotFound, stageFingerprint, "read card rows",
			"set has no cards in the workbook", nil)
	}

	doc := snapshot.Build(snapshot.SetInfo{
		ID:        item.SetID,
		Name:      set.Name,
		Version:   set.Version,
		Copyright: set.Copyright,
		GameID:    f.cfg.Outputs.GameID,
	}, cards)
	snapshot.NumberEncounterSets(doc)

	index, err := snapshot.ScanArtwork(f.artworkDirs(), f.logger)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageFingerprint, "scan artwork", "", err)
	}
	snapshot.AnnotateArtwork(doc, index)
	snapshot.Annotate(doc)

	snapDir := f.cfg.Paths.SnapshotDir
	if err := snapshot.Rotate(snapDir, item.SetID, item.Language, f.cfg.Workflow.FromScratch); err != nil {
		return services.Wrap(services.ErrTransient, stageFingerprint, "rotate snapshot", "", err)
	}

	var prior *etree.Document
	priorDoc, err := snapshot.Load(snapshot.OldPath(snapDir, item.SetID, item.Language))
	switch {
	case err == nil:
		prior = priorDoc
	case os.IsNotExist(err):
		f.logger.Info("no prior snapshot, processing everything",
			logging.String(logging.FieldSetID, item.SetID),
			logging.String(logging.FieldLanguage, item.Language))
	case errors.Is(err, snapshot.ErrSnapshotParse):
		return services.Wrap(services.ErrValidation, stageFingerprint, "load prior snapshot",
			"prior snapshot is unreadable; delete it to reprocess this pair", err)
	default:
		return services.Wrap(services.ErrTransient, stageFingerprint, "load prior snapshot", "", err)
	}

	info := snapshot.MarkSkips(doc, prior)
	if err := snapshot.Save(doc, snapshot.Path(snapDir, item.SetID, item.Language)); err != nil {
		return services.Wrap(services.ErrTransient, stageFingerprint, "save snapshot", "", err)
	}

	for _, class := range renderClasses(f.cfg.Outputs.Enabled) {
		pool := poolDir(f.cfg.Paths.CacheDir, class, item.SetID, item.Language)
		if err := snapshot.PruneStale(pool, info, f.logger); err != nil {
			return services.Wrap(services.ErrTransient, stageFingerprint, "prune stale images", "", err)
		}
	}

	staged, err := f.stageArtwork(doc, info, index, item)
	if err != nil {
		return err
	}

	item.SkippedSet = info.Set
	item.SkippedCards = len(info.CardIDs)
	f.logger.Info("fingerprinted set",
		logging.String(logging.FieldSetID, item.SetID),
		logging.String(logging.FieldLanguage, item.Language),
		logging.Bool("set_skipped", info.Set),
		logging.Int("cards_skipped", len(info.CardIDs)),
		logging.Int("artwork_staged", staged))
	return nil
}

// stageArtwork copies the artwork of unskipped cards into the render input
// staging tree.
func (f *Fingerprinter) stageArtwork(doc *etree.Document, info snapshot.SkipInfo, index map[string]snapshot.ArtworkEntry, item *runlog.Item) (int, error) {
	dir, err := staging.Create(f.cfg.Paths.StagingDir, renderInputClass, item.SetID, item.Language)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, stageFingerprint, "create render input", "", err)
	}

	staged := 0
	for _, card := range snapshot.Cards(doc) {
		id := card.SelectAttrValue("id", "")
		if id == "" || info.Skipped(id) {
			continue
		}
		for _, side := range []identity.Side{identity.SideA, identity.SideB} {
			entry, ok := index[identity.ArtworkKey(id, side)]
			if !ok {
				continue
			}
			if err := fileutil.CopyFile(entry.Path, filepath.Join(dir, entry.Name)); err != nil {
				return staged, services.Wrap(services.ErrTransient, stageFingerprint, "stage artwork",
					fmt.Sprintf("copy %s", entry.Name), err)
			}
			staged++
		}
	}
	return staged, nil
}

func (f *Fingerprinter) artworkDirs() []string {
	return []string{
		f.cfg.Paths.ArtworkDir,
		filepath.Join(f.cfg.Paths.ArtworkDir, "processed"),
	}
}

func (f *Fingerprinter) HealthCheck(ctx context.Context) stage.Health {
	if _, err := os.Stat(f.cfg.Sheet.Path); err != nil {
		return stage.Unhealthy(stageFingerprint, "card data workbook missing: "+f.cfg.Sheet.Path)
	}
	if _, err := os.Stat(f.cfg.Paths.ArtworkDir); err != nil {
		return stage.Unhealthy(stageFingerprint, "artwork directory missing: "+f.cfg.Paths.ArtworkDir)
	}
	return stage.Healthy(stageFingerprint)
}
