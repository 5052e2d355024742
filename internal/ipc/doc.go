// Package ipc exposes the daemon over JSON-RPC on a Unix domain socket and
// ships the matching client used by the CLI.
//
// The service is registered as "Shorts", so methods are addressed as
// Shorts.Generate, Shorts.Job, Shorts.List, Shorts.Preview, Shorts.Status
// and Shorts.Stop. Classified pipeline failures cross the wire as their
// user-facing message. The client reports a missing or refusing socket as
// ErrDaemonNotRunning so CLI commands fail fast when the daemon is offline.
package ipc
