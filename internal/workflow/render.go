package workflow

import (
	"context"
	"log/slog"
	"os/exec"

	"cardpress/internal/config"
	"cardpress/internal/fileutil"
	"cardpress/internal/logging"
	"cardpress/internal/runlog"
	"cardpress/internal/services"
	"cardpress/internal/services/gimp"
	"cardpress/internal/stage"
	"cardpress/internal/staging"
)

const stageRender = "render"

// classOps maps a pool class to the renderer operations that fill it. The
// PDF pool needs two passes: fronts and backs are prepared by separate
// operations into the same pool.
var classOps = map[string][]string{
	ClassDatabase: {gimp.OpDatabase},
	ClassPDF:      {gimp.OpPDFFront, gimp.OpPDFBack},
	ClassMPC:      {gimp.OpMakePlayingCards},
	ClassDTC:      {gimp.OpDriveThruCards},
}

// Renderer invokes the external renderer over the staged artwork of a pair,
// filling the per-class image pools.
type Renderer struct {
	cfg      *config.Config
	renderer gimp.Renderer
	logger   *slog.Logger
}

// NewRenderer constructs the rendering stage.
func NewRenderer(cfg *config.Config, renderer gimp.Renderer, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:      cfg,
		renderer: renderer,
		logger:   logging.NewComponentLogger(logger, stageRender),
	}
}

func (r *Renderer) Prepare(ctx context.Context, item *runlog.Item) error {
	return stage.RequirePair(item, stageRender)
}

func (r *Renderer) Execute(ctx context.Context, item *runlog.Item) error {
	if item.SkippedSet {
		r.logger.Info("set unchanged, skipping render",
			logging.String(logging.FieldSetID, item.SetID),
			logging.String(logging.FieldLanguage, item.Language))
		return nil
	}

	input := staging.Dir(r.cfg.Paths.StagingDir, renderInputClass, item.SetID, item.Language)
	staged, err := fileutil.ListFiles(input)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageRender, "list staged artwork", "", err)
	}
	if len(staged) == 0 {
		r.logger.Info("no changed artwork to render",
			logging.String(logging.FieldSetID, item.SetID),
			logging.String(logging.FieldLanguage, item.Language))
		return r.countRendered(item)
	}

	for _, class := range renderClasses(r.cfg.Outputs.Enabled) {
		pool := poolDir(r.cfg.Paths.CacheDir, class, item.SetID, item.Language)
		for _, op := range classOps[class] {
			r.logger.Info("rendering pool",
				logging.String(logging.FieldSetID, item.SetID),
				logging.String(logging.FieldLanguage, item.Language),
				logging.String("class", class),
				logging.String("operation", op))
			if err := r.renderer.Prepare(ctx, op, input, pool); err != nil {
				return services.Wrap(services.ErrExternalTool, stageRender, op,
					"renderer exited abnormally", err)
			}
		}
	}

	if err := staging.Remove(r.cfg.Paths.StagingDir, renderInputClass, item.SetID, item.Language); err != nil {
		return services.Wrap(services.ErrTransient, stageRender, "clean render input", "", err)
	}
	return r.countRendered(item)
}

// countRendered records the size of the pool the downstream outputs will
// draw from.
func (r *Renderer) countRendered(item *runlog.Item) error {
	classes := renderClasses(r.cfg.Outputs.Enabled)
	if len(classes) == 0 {
		return nil
	}
	names, err := fileutil.ListFiles(poolDir(r.cfg.Paths.CacheDir, classes[0], item.SetID, item.Language))
	if err != nil {
		return services.Wrap(services.ErrTransient, stageRender, "inspect pool", "", err)
	}
	item.RenderedCards = len(names)
	return nil
}

func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(r.cfg.Tools.GimpPath); err != nil {
		return stage.Unhealthy(stageRender, "renderer binary not found: "+r.cfg.Tools.GimpPath)
	}
	return stage.Healthy(stageRender)
}
