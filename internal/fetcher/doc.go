// Package fetcher downloads source videos with yt-dlp and locates the file it
// produced.
//
// yt-dlp is treated as an unreliable collaborator: the metadata it prints does
// not always name the file it wrote. Resolver therefore walks an ordered list
// of candidate strategies and, when none of them points at an existing file,
// falls back to the largest finished file in the scratch directory.
//
// Key entry points:
//   - Client.Download: runs yt-dlp and returns typed Metadata
//   - ParseMetadata: adapts the --dump-single-json payload
//   - RenderTemplate: expands an output template against metadata fields
//   - Resolver.Resolve: download and resolve in one step
package fetcher
