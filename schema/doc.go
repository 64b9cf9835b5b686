// Package schema provides composable, declarative descriptors for the JSON
// payloads exchanged with the console backend.
//
// # Descriptors
//
// A [Descriptor] describes the accepted shape of a decoded JSON value
// (primitive kind, nested object/array, union, literal). Fields of an object
// carry presence rules: required, optional, nullable, or defaulted.
//
// Validation is structural and total: [Validate] always returns either the
// normalized value (declared fields only, defaults applied, integers as int64,
// numbers as float64) or a non-empty [Violations] list naming each offending
// path with its expected kind. Unknown object fields are ignored so that a
// backend can add fields without breaking older clients. Unions try their
// variants in declaration order and accept the first structural match.
//
// # Registry
//
// entities.go declares one descriptor per wire entity together with its Go
// type, and [Lookup] exposes them by name. [Envelope] and [ListEnvelope]
// derive the response wrapper for any item descriptor.
//
// # What this package must NOT do
//
//   - Perform I/O or depend on transport, session, or api packages.
//   - Coerce a mismatching value (for example "yes" into true).
package schema
