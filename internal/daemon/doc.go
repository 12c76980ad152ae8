// Package daemon runs the long-lived ytpulse HTTP server.
//
// It wires configuration and the job runner into a single lifecycle with
// flock-based locking so only one server owns a state directory. The HTTP
// handlers are thin: they decode requests, ask the runner to admit and run
// jobs, and frame the resulting events as NDJSON.
//
// Keep pipeline logic in the stage packages; the daemon focuses on startup,
// shutdown and transport concerns.
package daemon
