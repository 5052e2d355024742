// Command shorts is the client for the shorts daemon.
//
// It submits generation and preview requests over the daemon's unix socket,
// inspects jobs, reports daemon and dependency status, and manages the
// configuration file. Commands that need the daemon fail with a hint to
// start it when the socket is missing.
package main
