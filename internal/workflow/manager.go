package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cardpress/internal/config"
	"cardpress/internal/imagepool"
	"cardpress/internal/logging"
	"cardpress/internal/runlog"
	"cardpress/internal/services"
	"cardpress/internal/sheet"
	"cardpress/internal/stage"
	"cardpress/internal/staging"
)

// SetSource lists the sets available in the card workbook so a run can
// expand configured IDs into concrete (set, language) pairs.
type SetSource interface {
	Sets() ([]sheet.SetRow, error)
}

type pipelineStage struct {
	name             string
	processingStatus runlog.Status
	doneStatus       runlog.Status
	handler          stage.Handler
}

// Manager drives the fingerprint, render, and package stages for every
// configured pair, sequentially and in stage order. Each pair resumes from
// the status the ledger recorded for it.
type Manager struct {
	cfg    *config.Config
	store  *runlog.Store
	source SetSource
	cache  *imagepool.Cache
	logger *slog.Logger
	stages []pipelineStage
}

// NewManager wires the pipeline. Stage handlers run in the order given to
// stageHandlersFor; the ledger statuses decide which stages a pair still needs.
func NewManager(cfg *config.Config, store *runlog.Store, source SetSource, cache *imagepool.Cache, fingerprint, render, pack stage.Handler, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		source: source,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "workflow"),
		stages: []pipelineStage{
			{name: stageFingerprint, processingStatus: runlog.StatusFingerprinting, doneStatus: runlog.StatusFingerprinted, handler: fingerprint},
			{name: stageRender, processingStatus: runlog.StatusRendering, doneStatus: runlog.StatusRendered, handler: render},
			{name: stagePackage, processingStatus: runlog.StatusPackaging, doneStatus: runlog.StatusCompleted, handler: pack},
		},
	}
}

// RunSummary reports how a batch run went.
type RunSummary struct {
	Completed int
	Failed    int
	Review    int
}

// Run processes every configured pair end to end. A failing pair is recorded
// in the ledger and does not stop the rest of the batch.
func (m *Manager) Run(ctx context.Context) (RunSummary, error) {
	m.cache.Invalidate()
	maxAge := time.Duration(m.cfg.Workflow.StagingMaxAge) * time.Hour
	cleanup := staging.CleanStale(m.cfg.Paths.StagingDir, maxAge, m.logger)
	if len(cleanup.Removed) > 0 {
		m.logger.Info("removed stale staging directories", logging.Int("count", len(cleanup.Removed)))
	}

	pairs, err := m.expandPairs()
	if err != nil {
		return RunSummary{}, err
	}
	if len(pairs) == 0 {
		m.logger.Warn("no pairs to process; check configured set ids")
		return RunSummary{}, nil
	}

	var summary RunSummary
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item, err := m.store.NewItem(ctx, pair.setID, pair.setName, pair.language)
		if err != nil {
			return summary, fmt.Errorf("register pair %s/%s: %w", pair.setID, pair.language, err)
		}
		m.processItem(ctx, item)
		switch item.Status {
		case runlog.StatusCompleted:
			summary.Completed++
		case runlog.StatusReview:
			summary.Review++
		default:
			summary.Failed++
		}
	}
	return summary, nil
}

type pairSpec struct {
	setID    string
	setName  string
	language string
}

// expandPairs crosses the configured set IDs with the configured languages.
// When no languages are configured each set falls back to the languages its
// workbook row declares.
func (m *Manager) expandPairs() ([]pairSpec, error) {
	listings, err := m.source.Sets()
	if err != nil {
		return nil, fmt.Errorf("list workbook sets: %w", err)
	}
	byID := make(map[string]sheet.SetRow, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}

	ids := m.cfg.Sets.IDs
	if len(ids) == 0 {
		ids = make([]string, 0, len(listings))
		for _, listing := range listings {
			ids = append(ids, listing.ID)
		}
	}

	var pairs []pairSpec
	for _, id := range ids {
		listing, ok := byID[id]
		if !ok {
			m.logger.Warn("configured set not present in workbook", logging.String(logging.FieldSetID, id))
			continue
		}
		languages := m.cfg.Sets.Languages
		if len(languages) == 0 {
			languages = listing.Languages
		}
		for _, language := range languages {
			pairs = append(pairs, pairSpec{setID: listing.ID, setName: listing.Name, language: language})
		}
	}
	return pairs, nil
}

func (m *Manager) processItem(ctx context.Context, item *runlog.Item) {
	pairLogger := m.logger.With(
		logging.String(logging.FieldSetID, item.SetID),
		logging.String(logging.FieldSetName, item.SetName),
		logging.String(logging.FieldLanguage, item.Language))

	for _, ps := range m.stages {
		if !m.stageApplies(item.Status, ps) {
			continue
		}
		if err := m.runStage(ctx, ps, item, pairLogger); err != nil {
			m.recordFailure(ctx, ps, item, pairLogger, err)
			return
		}
	}
}

// stageApplies reports whether the item's current status means the stage has
// not run yet. Pending items need every stage; a pair resumed mid-pipeline
// only needs the remainder.
func (m *Manager) stageApplies(status runlog.Status, ps pipelineStage) bool {
	switch ps.name {
	case stageFingerprint:
		return status == runlog.StatusPending
	case stageRender:
		return status == runlog.StatusPending || status == runlog.StatusFingerprinted
	case stagePackage:
		return status != runlog.StatusCompleted
	default:
		return false
	}
}

func (m *Manager) runStage(ctx context.Context, ps pipelineStage, item *runlog.Item, pairLogger *slog.Logger) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithItemID(ctx, item.ID), ps.name), requestID)
	stageLogger := logging.WithContext(stageCtx, pairLogger)

	item.Status = ps.processingStatus
	item.ProgressStage = ps.name
	item.ProgressMessage = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist %s start: %w", ps.name, err)
	}

	start := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := ps.handler.Prepare(stageCtx, item); err != nil {
		return err
	}
	if err := ps.handler.Execute(stageCtx, item); err != nil {
		return err
	}

	item.Status = ps.doneStatus
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist %s result: %w", ps.name, err)
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *Manager) recordFailure(ctx context.Context, ps pipelineStage, item *runlog.Item, pairLogger *slog.Logger, err error) {
	status := services.FailureStatus(err)
	if status == runlog.StatusReview {
		item.SetReview(err.Error())
	} else {
		item.SetFailed(err.Error())
	}
	if updateErr := m.store.Update(ctx, item); updateErr != nil {
		pairLogger.Error("failed to persist stage failure", logging.Error(updateErr))
	}
	pairLogger.Error("stage failed",
		logging.String(logging.FieldStage, ps.name),
		logging.String("status", string(item.Status)),
		logging.Error(err))
}

// HealthCheck aggregates every stage's view of its external requirements.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, ps := range m.stages {
		checks = append(checks, ps.handler.HealthCheck(ctx))
	}
	return checks
}
