// Package api binds the transport to schema descriptors, producing typed
// results or classified errors for every backend operation.
//
// # Response classification
//
// [ValidateResponse] turns a raw [transport.Response] into either a typed
// [Envelope] or an [*Error] whose [Kind] is one of Parse, API, Auth or
// Validation. The transport itself contributes Network failures. Shape is
// enforced here; business success (the envelope's success flag) is left to
// callers.
//
// # Operations
//
// [Invoke] is the single primitive: one method, one path, an optional request
// body checked against its descriptor, and one response descriptor.
// [Resource] and [AuthAPI] are thin typed wrappers over it.
//
// # Architecture boundaries
//
// Every operation takes the bearer token as an argument. This package never
// reads or mutates a session and never navigates; an Auth error is returned
// to the caller, which decides whether to sign out.
//
// # What this package must NOT do
//
//   - Import the session package or the root console package.
//   - Retry requests (operations are not guaranteed idempotent).
//   - Return a value that failed schema validation.
package api
