package stage

import (
	"cardpress/internal/runlog"
	"cardpress/internal/services"
)

// RequirePair validates that an item carries the set and language a stage
// needs. On failure it returns a services.ErrValidation suitable for stage
// Execute methods.
func RequirePair(item *runlog.Item, stageName string) error {
	if item == nil || item.SetID == "" || item.Language == "" {
		return services.Wrap(
			services.ErrValidation, stageName, "validate item",
			"ledger item is missing its set or language", nil)
	}
	return nil
}
