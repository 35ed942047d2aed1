package snapshot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cardpress/internal/fileutil"
	"cardpress/internal/identity"
	"cardpress/internal/logging"
)

// PruneStale deletes previously rendered images whose embedded card id no
// longer maps to an unchanged card. Files whose names do not carry a readable
// id slot are reported and left alone; deleting on a failed parse would risk
// taking out files we do not own.
func PruneStale(dir string, info SkipInfo, logger *slog.Logger) error {
	entries, err := fileutil.ListFiles(dir)
	if err != nil {
		return fmt.Errorf("list rendered images: %w", err)
	}
	for _, name := range entries {
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".png" && ext != ".jpg" {
			continue
		}
		cardID, ok := identity.CardIDAt(name)
		if !ok {
			logger.Warn("unrecognized rendered image name",
				logging.String(logging.FieldOutput, name))
			continue
		}
		if info.Skipped(cardID) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove stale image %s: %w", name, err)
		}
		logger.Debug("pruned stale image",
			logging.String(logging.FieldCardID, cardID),
			logging.String(logging.FieldOutput, name))
	}
	return nil
}
