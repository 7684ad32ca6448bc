package stage

import (
	"context"

	"reelsnap/internal/jobs"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage. Prepare validates inputs and derives paths without side
// effects on shared state; Execute performs the work; both operate on the
// job descriptor in place.
type Handler interface {
	Prepare(context.Context, *jobs.Job) error
	Execute(context.Context, *jobs.Job) error
	HealthCheck(context.Context) Health
}
