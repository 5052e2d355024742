// Package artifact persists finished shorts.
//
// Three backends sit behind Store: the local filesystem, Amazon S3 (or any
// S3-compatible endpoint), and Google Cloud Storage. New picks one from the
// [artifacts] configuration section. Every backend returns an Artifact whose
// Name is the stored file name and whose URL is where a client can fetch it.
package artifact
