// Package stubbackend is an in-process administration backend used by the
// console tests, the example and consolectl's --stub mode.
//
// It speaks the same envelope format as the production backend:
// {success, message, data, meta?} with bearer-token auth on every route
// except sign-in. Credentials are stored as Argon2id PHC hashes and tokens
// are HS256 JWTs.
//
// # What this package must NOT do
//
//   - Import the root console package (the console is its client).
//   - Persist anything; state lives for the lifetime of a [Server].
package stubbackend
