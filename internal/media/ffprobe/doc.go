// Package ffprobe wraps the two ffprobe invocations the pipeline needs.
//
// Key entry points:
//   - Inspect: full JSON inspection, used to validate finished shorts
//   - Dimensions: compact csv query for the first video stream's width and
//     height, used when fetcher metadata lacks a frame size
//
// Neither function interprets media beyond parsing ffprobe output, so callers
// decide how a missing stream or failed probe affects a job.
package ffprobe
