// Package workflow coordinates queue processing: it claims ready jobs,
// dispatches them to the pipeline stage matching their status, retries
// the external-service stages, and persists every transition. A file
// lock guards the queue against concurrent runners.
package workflow
