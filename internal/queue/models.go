package queue

import (
	"strings"
	"time"

	"shorts/internal/crop"
	"shorts/internal/overlay"
)

// Status represents the lifecycle of a generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// InterruptedMessage is recorded on jobs found processing when the daemon starts.
const InterruptedMessage = "Short generation was interrupted before completion."

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// Options are the overlay and crop settings a job was accepted with.
type Options struct {
	Overlay overlay.Options `json:"overlay"`
	Crop    *crop.Request   `json:"crop,omitempty"`
}

// NewJob carries the fields supplied when a job is accepted.
type NewJob struct {
	SourceURL string
	StartTime int
	Duration  int
	Options   Options
	RequestID string
}

// Job is a generation job persisted in SQLite.
type Job struct {
	ID           int64     `json:"id"`
	SourceURL    string    `json:"source_url"`
	StartTime    int       `json:"start_time"`
	Duration     int       `json:"duration"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	File         string    `json:"file,omitempty"`
	FileURL      string    `json:"file_url,omitempty"`
	Options      Options   `json:"options"`
	RequestID    string    `json:"request_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has reached completed or failed.
func (j Job) IsTerminal() bool {
	return IsTerminalStatus(j.Status)
}

// IsTerminalStatus reports whether status is completed or failed.
func IsTerminalStatus(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
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
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Counts summarizes jobs per status.
type Counts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
