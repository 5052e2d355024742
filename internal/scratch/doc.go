// Package scratch reclaims per-job and per-preview working directories that a
// previous daemon process left behind.
//
// Jobs work in scratch_dir/job-<id>-*, previews in scratch_dir/preview-*.
// Both remove their directory when they finish, so anything matching those
// prefixes at daemon start belongs to a process that died mid-run.
package scratch
