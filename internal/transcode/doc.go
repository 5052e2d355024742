// Package transcode runs ffmpeg to cut, reframe and caption a short, and to
// grab single preview frames.
//
// Transcode trims with input seeking (-ss before -i), applies the filter graph
// built by the filtergraph package, and writes a uniquely named MP4 into the
// job's scratch directory. A non-zero exit becomes ErrTranscodeFailed carrying
// the tail of ffmpeg's stderr as the user message. When ffprobe is configured
// the output is inspected afterwards and suspicious results are logged
// without failing the job.
package transcode
