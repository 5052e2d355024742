// Package metrics records job and stage measurements in a Prometheus registry
// and exports them through the node_exporter textfile collector format.
//
// A nil *Recorder is valid and discards everything.
//
// The daemon owns one Recorder. The runner reports accepted and finished jobs
// and per-stage durations, the preview generator counts served frames, and
// Flush rewrites metrics.textfile after each job and at shutdown. Finished
// jobs are labeled completed, failed or dropped; dropped covers completions
// that lost a race with another terminal write, so the in-flight gauge still
// balances.
package metrics
