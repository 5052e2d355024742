// Package preview produces a still frame of a source video so a client can
// pick crop coordinates before submitting a job.
//
// Each Generate call gets its own scratch directory, removed on return. The
// frame is returned inline as a JPEG data URI, downscaled with Lanczos when
// preview.max_width is set. Width and Height always describe the source.
package preview
