// Package queue persists short generation jobs in SQLite.
//
// A job is created directly in the processing state and leaves it exactly
// once: Complete and Fail only apply while the row is still processing, so a
// finished job can never be rewritten. FailOrphans closes out jobs left
// processing by a daemon that exited mid-run.
//
// The database is transient state for the daemon rather than an archive.
// Schema changes bump schemaVersion in schema.go; users delete the database to
// adopt the new schema.
package queue
