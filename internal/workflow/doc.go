// Package workflow accepts short generation requests and runs each accepted
// job to completion in the background.
//
// Submit validates the request, probes source reachability, records the job
// as processing and dispatches one goroutine per job. The goroutine walks the
// pipeline (fetch, probe, window check, crop, filter graph, transcode, store)
// inside a private scratch directory and finishes with exactly one terminal
// write: completed with an artifact, or failed with a user-facing message.
// Panics inside the pipeline are recovered and recorded as failures.
//
// Preview shares the validation and reachability gate but runs
// synchronously and creates no job.
package workflow
