package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeRun is one execution of a source scrape, recorded in the local ops
// store.
type ScrapeRun struct {
	ID            int64      `json:"id" db:"id"`
	SourceID      string     `json:"source_id" db:"source_id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	ListingsFound int        `json:"listings_found" db:"listings_found"`
	ListingsNew   int        `json:"listings_new" db:"listings_new"`
	PropertiesNew int        `json:"properties_new" db:"properties_new"`
	EventsNew     int        `json:"events_new" db:"events_new"`
	ErrorsCount   int        `json:"errors_count" db:"errors_count"`
}

// BackfillRun records one legacy-to-vNext migration run.
type BackfillRun struct {
	ID            int64      `json:"id" db:"id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	DryRun        bool       `json:"dry_run" db:"dry_run"`
	Status        RunStatus  `json:"status" db:"status"`
	LegacyRows    int        `json:"legacy_rows" db:"legacy_rows"`
	Properties    int        `json:"properties" db:"properties"`
	Events        int        `json:"events" db:"events"`
	Contacts      int        `json:"contacts" db:"contacts"`
	PipelineRows  int        `json:"pipeline_rows" db:"pipeline_rows"`
	SoftErrors    int        `json:"soft_errors" db:"soft_errors"`
}
