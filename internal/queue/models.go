package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a captioning job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusExtracting  Status = "extracting"
	StatusExtracted   Status = "extracted"
	StatusRecognizing Status = "recognizing"
	StatusRecognized  Status = "recognized"
	StatusAligning    Status = "aligning"
	StatusAligned     Status = "aligned"
	StatusSegmenting  Status = "segmenting"
	StatusSegmented   Status = "segmented"
	StatusStyling     Status = "styling"
	StatusStyled      Status = "styled"
	StatusBurning     Status = "burning"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusReview      Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusExtracted,
	StatusRecognizing,
	StatusRecognized,
	StatusAligning,
	StatusAligned,
	StatusSegmenting,
	StatusSegmented,
	StatusStyling,
	StatusStyled,
	StatusBurning,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting:  {},
	StatusRecognizing: {},
	StatusAligning:    {},
	StatusSegmenting:  {},
	StatusStyling:     {},
	StatusBurning:     {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map an interrupted processing status back to the
// status the stage started from, so stuck jobs resume cleanly.
var stageRollbackTransitions = []statusTransition{
	{from: StatusExtracting, to: StatusPending},
	{from: StatusRecognizing, to: StatusExtracted},
	{from: StatusAligning, to: StatusRecognized},
	{from: StatusSegmenting, to: StatusAligned},
	{from: StatusStyling, to: StatusSegmented},
	{from: StatusBurning, to: StatusStyled},
}

// Job represents a captioning job persisted in SQLite.
type Job struct {
	ID              int64
	JobKey          string // unique key naming the staging directory
	Title           string
	SourcePath      string // input video
	TranscriptPath  string // canonical narration text
	AudioPath       string // extracted or synthesized speech audio
	WordsPath       string // recognizer word-timing JSON
	TokensPath      string // aligned token JSON
	SubtitlePath    string // rendered ASS document
	FinalFile       string // burned output video
	Status          Status
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	NeedsReview     bool
	ReviewReason    string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the job's run.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// SetProgress updates all three progress fields atomically.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.ProgressStage = "Failed"
}

// SetReview parks the job for manual intervention with a reason.
func (j *Job) SetReview(reason string) {
	j.Status = StatusReview
	j.NeedsReview = true
	j.ReviewReason = reason
	j.ProgressMessage = reason
	j.ProgressStage = "Review"
}
