// Package session holds the client's authenticated session and bounds its
// lifetime.
//
// # Store
//
// [Store] owns the in-memory [Session] and mirrors it to a device-local
// [Storage] entry (memory, sqlite or redis). [Store.Replace] is the only
// mutator; [Store.Load] rehydrates at startup and purges absent, corrupt or
// expired entries; [Store.Current] never touches storage.
//
// # Lifecycle
//
// [Lifecycle] is the Unauthenticated/Authenticated state machine. Entering
// Authenticated arms one expiry timer keyed by a generation counter, so a
// timer left over from an earlier session can never clear a newer one. Every
// exit cancels the timer before clearing the store; exits while already
// Unauthenticated are no-ops. Loss of a session navigates to the sign-in
// path unless the navigator is already there.
//
// # Architecture boundaries
//
// This package does not perform HTTP calls or interpret tokens. It reacts to
// Auth errors reported by callers through [Lifecycle.HandleError].
//
// # What this package must NOT do
//
//   - Import the root console package (no upward imports).
//   - Expose a session whose expiresAt has passed.
//   - Write the durable entry outside [Store].
package session
