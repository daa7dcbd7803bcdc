// Package authcore issues, verifies, rotates and revokes credential tokens on
// top of a pluggable credential store, hashes passwords, and links accounts to
// external identity providers.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Sessions
//
// A session is a refresh token record. Refresh rotates it: the presented
// token is revoked and a new pair is minted. Revocation is a compare-and-set
// in the store, so of any number of concurrent refreshes presenting the same
// token exactly one succeeds. Logout revokes one record; RevokeAllSessions
// revokes every record of an account; PurgeExpired deletes dead records.
//
// Access tokens are stateless. ValidateAccess never touches the store, so an
// access token outlives the revocation of its session until it expires.
//
// # Errors
//
// Every failure is an [*Error] with a [Kind]. Use errors.Is with the kind
// sentinels (ErrUnauthorized, ErrConflict, ...) or the reason sentinels
// (ErrAlreadyRevoked, ErrProviderConflict, ...). [HTTPStatus] and
// [PublicMessage] map errors for transport layers.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config]
// and value types (AuthResult, SessionInfo, MetricsSnapshot, ...). Flow
// orchestration, audit dispatch and identifier handling live under internal/
// and are never exported. Persistence is behind store.CredentialStore; see the
// store/ subpackages for implementations.
//
// # What this package must NOT do
//
//   - Keep cached copies of accounts or token records between calls.
//   - Log or audit token values or passwords. Tokens appear only as
//     fingerprints.
//   - Import any sub-package that re-imports authcore (no import cycles).
package authcore
