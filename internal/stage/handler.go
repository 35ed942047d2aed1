package stage

import (
	"context"

	"cardpress/internal/runlog"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *runlog.Item) error
	Execute(context.Context, *runlog.Item) error
	HealthCheck(context.Context) Health
}
