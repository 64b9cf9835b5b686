// Package goSession is the core of an administration console client: a
// schema-validated API client bound to a time-bounded authenticated session.
//
// A [Console] is assembled by [Builder.Build] and is safe for concurrent use.
// Every response crossing the network is checked against its registered
// schema before callers see it; a response that breaks its schema is a
// Validation error, never a partially typed value.
//
// # Architecture boundaries
//
// goSession is the public facade. It exposes [Console], [Builder], [Config],
// metrics and audit types. Wire schemas live in schema/, the raw HTTP
// exchange in transport/, classification and typed resources in api/, and
// the session state machine in session/.
//
// # What this package must NOT do
//
//   - Retry API calls (backend operations are not idempotent).
//   - Hand out a session whose expiry has passed.
//   - Perform I/O in [New] or the With* builder methods (construction is
//     allocation-only until Build).
//   - Import any sub-package that re-imports goSession (no import cycles).
package goSession
