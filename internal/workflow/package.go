package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"cardpress/internal/config"
	"cardpress/internal/fileutil"
	"cardpress/internal/imagepool"
	"cardpress/internal/logging"
	"cardpress/internal/packaging"
	"cardpress/internal/proofsheet"
	"cardpress/internal/runlog"
	"cardpress/internal/services"
	"cardpress/internal/services/magick"
	"cardpress/internal/snapshot"
	"cardpress/internal/stage"
	"cardpress/internal/staging"
)

const stagePackage = "package"

// Packager turns the rendered pools of a pair into deliverables: thumbnail
// trees, client packs, proof sheets, and vendor archives.
type Packager struct {
	cfg       *config.Config
	converter magick.Converter
	cache     *imagepool.Cache
	logger    *slog.Logger
}

// NewPackager constructs the packaging stage.
func NewPackager(cfg *config.Config, converter magick.Converter, cache *imagepool.Cache, logger *slog.Logger) *Packager {
	return &Packager{
		cfg:       cfg,
		converter: converter,
		cache:     cache,
		logger:    logging.NewComponentLogger(logger, stagePackage),
	}
}

func (p *Packager) Prepare(ctx context.Context, item *runlog.Item) error {
	return stage.RequirePair(item, stagePackage)
}

func (p *Packager) Execute(ctx context.Context, item *runlog.Item) error {
	if item.SkippedSet {
		p.logger.Info("set unchanged, keeping existing outputs",
			logging.String(logging.FieldSetID, item.SetID),
			logging.String(logging.FieldLanguage, item.Language))
		return nil
	}

	outputs := make(map[string]string)
	for _, class := range p.cfg.Outputs.Enabled {
		report, err := p.classify(class, item)
		if err != nil {
			return err
		}
		for _, excl := range report.Excluded {
			p.logger.Warn("card excluded from output",
				logging.String("class", class),
				logging.String(logging.FieldOutput, excl.Name),
				logging.Error(excl.Reason))
		}

		path, err := p.deliver(ctx, class, item, report)
		if err != nil {
			return err
		}
		outputs[class] = path
		p.logger.Info("output delivered",
			logging.String(logging.FieldSetID, item.SetID),
			logging.String(logging.FieldLanguage, item.Language),
			logging.String("class", class),
			logging.String(logging.FieldOutput, path))
	}

	encoded, err := json.Marshal(outputs)
	if err != nil {
		return services.Wrap(services.ErrTransient, stagePackage, "record outputs", "", err)
	}
	item.OutputsJSON = string(encoded)
	return nil
}

// backsFor selects the official back variants for an output class. The
// vendor pools ship with their own bleed and color treatments; everything
// else uses the 300 dpi proof backs.
func backsFor(class string) imagepool.BackSet {
	switch class {
	case ClassMPC:
		return imagepool.MPCBacks
	case ClassDTC:
		return imagepool.DTCBacks
	default:
		return imagepool.ProofBacks
	}
}

func (p *Packager) classify(class string, item *runlog.Item) (imagepool.Report, error) {
	pool := poolDir(p.cfg.Paths.CacheDir, class, item.SetID, item.Language)
	report, err := imagepool.Classify(pool, p.cfg.Paths.BacksDir, backsFor(class), p.cache, p.logger)
	if err != nil {
		return imagepool.Report{}, services.Wrap(services.ErrValidation, stagePackage, "classify pool", class, err)
	}
	if report.Empty() {
		return imagepool.Report{}, services.Wrap(services.ErrNotFound, stagePackage, "classify pool",
			fmt.Sprintf("%s: %v", class, imagepool.ErrNoCardsFound), nil)
	}
	return report, nil
}

func (p *Packager) deliver(ctx context.Context, class string, item *runlog.Item, report imagepool.Report) (string, error) {
	dir := outputDir(p.cfg.Paths.OutputDir, class)
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", services.Wrap(services.ErrTransient, stagePackage, "create output directory", class, err)
	}

	switch class {
	case ClassDatabase:
		dest := filepath.Join(dir, pairName(item.SetName, item.Language))
		if err := packaging.CopyDatabase(report.Pairs(), dest, p.logger); err != nil {
			return "", services.Wrap(services.ErrTransient, stagePackage, "copy thumbnails", "", err)
		}
		if err := p.copySetDocument(item, dest); err != nil {
			return "", err
		}
		return dest, nil

	case ClassTabletop:
		dest := filepath.Join(dir, item.SetID+"."+item.Language+".o8c")
		err := packaging.BuildClientArchive(report.Pairs(), p.cfg.Outputs.GameID, item.SetID, dest)
		if err != nil {
			return "", services.Wrap(services.ErrTransient, stagePackage, "build client pack", "", err)
		}
		if err := p.copySetDocument(item, dir); err != nil {
			return "", err
		}
		return dest, nil

	case ClassPDF:
		buckets := report.Buckets()
		for i, bucket := range buckets {
			buckets[i] = imagepool.Replicate(bucket, packaging.PlayerCopies)
		}
		var last string
		for _, format := range p.cfg.PDF.PageFormats {
			last = filepath.Join(dir, pairName(item.SetName, item.Language)+"."+format+".pdf")
			if err := proofsheet.Generate(buckets, format, last); err != nil {
				return "", services.Wrap(services.ErrTransient, stagePackage, "generate proof sheet", format, err)
			}
		}
		return last, nil

	case ClassMPC:
		return p.deliverVendor(item, report.Pairs(), dir, p.cfg.Outputs.MPCFormats, packaging.VendorOptions{
			Stamp:        true,
			Instructions: p.cfg.Outputs.MPCInstructions,
		})

	case ClassDTC:
		pairs, err := p.convertCMYK(ctx, item, report.Pairs())
		if err != nil {
			return "", err
		}
		defer staging.Remove(p.cfg.Paths.StagingDir, ClassDTC, item.SetID, item.Language)
		return p.deliverVendor(item, pairs, dir, p.cfg.Outputs.DTCFormats, packaging.VendorOptions{
			SplitDecks:   true,
			Instructions: p.cfg.Outputs.DTCInstructions,
		})

	default:
		return "", services.Wrap(services.ErrConfiguration, stagePackage, "deliver output",
			"unknown output class "+class, nil)
	}
}

func (p *Packager) deliverVendor(item *runlog.Item, pairs []imagepool.Pair, dir string, formats []string, opts packaging.VendorOptions) (string, error) {
	var last string
	for _, format := range formats {
		opts.Format = format
		last = filepath.Join(dir, pairName(item.SetName, item.Language)+packaging.Extension(format))
		if err := packaging.BuildVendorArchive(pairs, opts, last); err != nil {
			return "", services.Wrap(services.ErrTransient, stagePackage, "build vendor archive", format, err)
		}
	}
	return last, nil
}

// convertCMYK rewrites every pair image as CMYK JPEG in a staging tree and
// returns pairs pointing at the converted files.
func (p *Packager) convertCMYK(ctx context.Context, item *runlog.Item, pairs []imagepool.Pair) ([]imagepool.Pair, error) {
	dir, err := staging.Create(p.cfg.Paths.StagingDir, ClassDTC, item.SetID, item.Language)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stagePackage, "create conversion staging", "", err)
	}

	converted := make(map[string]string)
	convert := func(src string) (string, error) {
		if dest, ok := converted[src]; ok {
			return dest, nil
		}
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".jpg"
		dest := filepath.Join(dir, base)
		if err := p.converter.ConvertCMYK(ctx, src, dest); err != nil {
			return "", services.Wrap(services.ErrExternalTool, stagePackage, "convert to cmyk",
				filepath.Base(src), err)
		}
		converted[src] = dest
		return dest, nil
	}

	out := make([]imagepool.Pair, len(pairs))
	for i, pair := range pairs {
		front, err := convert(pair.Front)
		if err != nil {
			return nil, err
		}
		back, err := convert(pair.Back)
		if err != nil {
			return nil, err
		}
		pair.Front = front
		pair.Back = back
		out[i] = pair
	}
	return out, nil
}

// copySetDocument drops the pair's set document next to the images so the
// database and client outputs carry their own metadata.
func (p *Packager) copySetDocument(item *runlog.Item, destDir string) error {
	src := snapshot.Path(p.cfg.Paths.SnapshotDir, item.SetID, item.Language)
	dest := filepath.Join(destDir, "set.xml")
	if err := fileutil.CopyFile(src, dest); err != nil {
		return services.Wrap(services.ErrTransient, stagePackage, "copy set document", "", err)
	}
	return nil
}

func (p *Packager) HealthCheck(ctx context.Context) stage.Health {
	if p.cfg.OutputEnabled(ClassDTC) {
		if _, err := exec.LookPath(p.cfg.Tools.MagickPath); err != nil {
			return stage.Unhealthy(stagePackage, "converter binary not found: "+p.cfg.Tools.MagickPath)
		}
	}
	return stage.Healthy(stagePackage)
}
