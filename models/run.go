package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type RunMode string

const (
	RunModeImport RunMode = "import"
	RunModeSync   RunMode = "sync"
)

// ImportRun is the local run-history row kept in SQLite for each
// import or sync invocation.
type ImportRun struct {
	ID                    int64      `json:"id" db:"id"`
	Mode                  RunMode    `json:"mode" db:"mode"`
	SourceMarket          string     `json:"source_market" db:"source_market"`
	FilePath              string     `json:"file_path" db:"file_path"`
	StartedAt             time.Time  `json:"started_at" db:"started_at"`
	FinishedAt            *time.Time `json:"finished_at" db:"finished_at"`
	Status                RunStatus  `json:"status" db:"status"`
	TotalProcessed        int        `json:"total_processed" db:"total_processed"`
	NewProperties         int        `json:"new_properties" db:"new_properties"`
	UpdatedProperties     int        `json:"updated_properties" db:"updated_properties"`
	DeactivatedProperties int        `json:"deactivated_properties" db:"deactivated_properties"`
	ImageUploads          int        `json:"image_uploads" db:"image_uploads"`
	ErrorsCount           int        `json:"errors_count" db:"errors_count"`
}
