package ipc

import (
	"shorts/internal/deps"
	"shorts/internal/preflight"
	"shorts/internal/queue"
	"shorts/internal/workflow"
)

// Job is the wire form of a job record.
type Job = queue.Job

// DependencyStatus describes availability of an external binary.
type DependencyStatus = deps.Status

// CheckResult is one preflight check outcome.
type CheckResult = preflight.Result

// GenerateRequest submits a short generation request.
type GenerateRequest struct {
	Request workflow.Request `json:"request"`
}

// GenerateResponse carries the freshly created job.
type GenerateResponse struct {
	Job Job `json:"job"`
}

// JobRequest fetches a single job by id.
type JobRequest struct {
	ID int64 `json:"id"`
}

// JobResponse contains a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// ListRequest filters jobs by status.
type ListRequest struct {
	Statuses []string `json:"statuses"`
}

// ListResponse contains jobs, newest first.
type ListResponse struct {
	Jobs []Job `json:"jobs"`
}

// PreviewRequest asks for a still frame.
type PreviewRequest struct {
	Request workflow.PreviewRequest `json:"request"`
}

// PreviewResponse carries an inline JPEG data URI and source dimensions.
type PreviewResponse struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon status information.
type StatusResponse struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	DatabasePath    string             `json:"database_path"`
	LockPath        string             `json:"lock_path"`
	SocketPath      string             `json:"socket_path"`
	ArtifactBackend string             `json:"artifact_backend"`
	Counts          queue.Counts       `json:"counts"`
	Dependencies    []DependencyStatus `json:"dependencies"`
	Checks          []CheckResult      `json:"checks"`
}

// StopRequest asks the daemon to exit.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
