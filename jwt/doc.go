// Package jwt reads expiry from bearer tokens and issues HS256 tokens for the
// development backend.
//
// # Client side
//
// [ExpiresAt] reads the exp claim without verifying the signature. The
// client treats the bearer token as opaque; exp is only a hint used when the
// sign-in response carries no explicit expiry.
//
// # Development backend
//
// [Manager] issues and verifies HS256 tokens for internal/stubbackend. It is
// not meant for production token issuance.
package jwt
