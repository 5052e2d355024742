// Package probe determines the frame size of a downloaded source video.
//
// yt-dlp metadata usually carries width and height already. When it does not,
// the Prober asks ffprobe for the first video stream. ffprobe is optional: a
// source with no size from either path fails with ErrDimensionsUnavailable,
// which also covers audio-only downloads.
package probe
