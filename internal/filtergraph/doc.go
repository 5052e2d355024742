// Package filtergraph assembles the ffmpeg -vf expression for a short.
//
// Build is pure and deterministic: identical inputs always produce the same
// bytes, and position ratios are printed with six decimals so values that
// differ only past that precision render identically.
//
// The chain is either a cover fill (scale up, center crop) when no crop is
// given, or the user crop followed by a fit-and-pad to the target size. A
// drawtext stage is always appended.
package filtergraph
