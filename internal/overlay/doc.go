// Package overlay normalizes the text overlay settings attached to a
// generation request and resolves overlay fonts to files on disk.
//
// Normalization is deliberately lenient: a blank text, an unknown font, a
// malformed color, or a non-positive size silently falls back to the house
// default rather than failing the job. It runs once when a job is accepted so
// the pipeline only ever sees canonical values.
package overlay
