package models

import "time"

// RunPhase is the per-item phase reported while a run iterates.
type RunPhase string

const (
	PhaseResolving RunPhase = "resolving"
	PhaseChecking  RunPhase = "checking"
	PhaseUploading RunPhase = "uploading"
	PhaseRecorded  RunPhase = "recorded"
	PhaseSkipped   RunPhase = "skipped"
	PhaseCompleted RunPhase = "completed"
)

// SkipReason explains why an item was skipped. Duplicates are expected
// steady-state behavior; the other reasons are surfaced for diagnostics.
type SkipReason string

const (
	SkipDuplicate SkipReason = "duplicate"
	SkipTooLarge  SkipReason = "too_large"
	SkipFailed    SkipReason = "failed"
)

// RunProgress is the live progress signal for an in-flight run.
type RunProgress struct {
	RunID              string     `json:"runId"`
	Phase              RunPhase   `json:"phase"`
	CurrentIndex       int        `json:"currentIndex"`
	TotalCount         int        `json:"totalCount"`
	CurrentFileName    string     `json:"currentFileName,omitempty"`
	CurrentFileLocator string     `json:"currentFileLocator,omitempty"`
	SkipReason         SkipReason `json:"skipReason,omitempty"`
	UploadPercent      int        `json:"uploadPercent"`
	UploadedBytes      int64      `json:"uploadedBytes"`
	TotalBytes         int64      `json:"totalBytes"`
	SpeedBytesPerSec   int64      `json:"speedBytesPerSec"`
	ETASeconds         int64      `json:"etaSeconds"`
}

// RunOutcome is the terminal result of a completed run.
type RunOutcome struct {
	RunID         string    `json:"runId"`
	UploadedCount int       `json:"uploadedCount"`
	SkippedCount  int       `json:"skippedCount"`
	TotalCount    int       `json:"totalCount"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// TriggerSyncRequest for POST /api/sync/run
type TriggerSyncRequest struct {
	Locators []string `json:"locators,omitempty"`
	AutoSync bool     `json:"autoSync"`
}

// TriggerSyncResponse for POST /api/sync/run
type TriggerSyncResponse struct {
	Accepted bool   `json:"accepted"`
	Slot     string `json:"slot"`
}

// ErrorResponse is the generic error payload
type ErrorResponse struct {
	Error string `json:"error"`
}
