// Package preflight provides readiness checks run before work is accepted
// and reported by status commands.
//
// These checks run in two contexts:
//   - Before a job or preview is accepted, Reachability dials the source
//     platform. A failure rejects the request without creating a job.
//   - The daemon status RPC and the CLI combine CheckSystemDeps and
//     RunAll to display binary and directory health.
package preflight
