// Package services defines shared plumbing consumed by the pipeline stages and
// the daemon boundary.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Sentinel error markers for every pipeline outcome plus the Fail and Wrap
//     helpers that attach a stage and a user-facing message to a cause.
//   - UserMessage, which turns any pipeline error into the text persisted on a
//     failed job.
//
// Stage code should always return errors built with Fail so the runner can
// classify and report them without inspecting error strings.
package services
