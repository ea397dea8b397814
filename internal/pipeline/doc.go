// Package pipeline implements the six workflow stages that turn a
// queued job into a captioned video: extract, recognize, align,
// segment, style, and burn. Each stage reads its inputs from the job's
// staging directory and writes its artifacts back there, so a job can
// resume from any completed stage.
package pipeline
