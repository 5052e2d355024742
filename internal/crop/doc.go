// Package crop maps a user-selected crop rectangle onto the source frame.
//
// Normalize clamps the selection to the frame, quantizes it to whole pixels,
// and forces even dimensions because the H.264 encoder rejects odd chroma
// plane sizes. Selections that collapse to a sliver return ok=false so the
// caller falls back to the default fill geometry instead of failing the job.
package crop
