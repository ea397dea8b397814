// Package queue persists captioning jobs in SQLite and models their
// lifecycle through the pipeline stages.
//
// A job moves pending -> extracting -> ... -> burning -> completed, with
// failed and review as terminal/parking states. The store is safe for
// concurrent workers: claiming the next pending job is a conditional
// update, and busy SQLite errors are retried with backoff.
package queue
