// Package daemon owns the long-running shorts process lifecycle.
//
// It holds a flock-based single-instance lock, recovers jobs orphaned by a
// previous crash, fronts the workflow runner for the IPC layer, and drains
// in-flight jobs on shutdown within the configured timeout.
//
// Keep pipeline logic in workflow; the daemon only coordinates startup,
// shutdown, and status reporting.
package daemon
