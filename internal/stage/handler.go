// Package stage defines the contract between the workflow manager and
// the pipeline stages it dispatches jobs to.
package stage

import (
	"context"

	"autocaptions/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
// Prepare validates inputs and fills in derived job fields; Execute performs
// the work and mutates the job in place. The manager persists the job after
// each call.
type Handler interface {
	Prepare(context.Context, *queue.Job) error
	Execute(context.Context, *queue.Job) error
	HealthCheck(context.Context) Health
}
