package packaging

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"cardpress/internal/fileutil"
	"cardpress/internal/identity"
	"cardpress/internal/imagepool"
	"cardpress/internal/logging"
)

// CopyDatabase writes database thumbnail copies of a pool into destDir using
// the compact database names. Cards whose database names collide (reprints
// sharing a number and slug) keep the first copy with a warning.
func CopyDatabase(pairs []imagepool.Pair, destDir string, logger *slog.Logger) error {
	if err := fileutil.EnsureDir(destDir); err != nil {
		return fmt.Errorf("create database output: %w", err)
	}

	written := make(map[string]string)
	copyOne := func(ident identity.Identity, srcPath string) error {
		name := ident.Render(identity.SchemeDatabase, extOf(srcPath))
		if prev, dup := written[name]; dup {
			logger.Warn("database name collision, keeping first card",
				logging.String(logging.FieldOutput, name),
				logging.String(logging.FieldCardID, prev))
			return nil
		}
		written[name] = ident.CardID
		if err := fileutil.CopyFile(srcPath, filepath.Join(destDir, name)); err != nil {
			return fmt.Errorf("copy thumbnail %s: %w", name, err)
		}
		return nil
	}

	for _, pair := range pairs {
		front := pair.Identity
		front.Side = identity.SideA
		if err := copyOne(front, pair.Front); err != nil {
			return err
		}
		if pair.OfficialBack {
			continue
		}
		back := pair.Identity
		back.Side = identity.SideB
		if err := copyOne(back, pair.Back); err != nil {
			return err
		}
	}
	return nil
}
