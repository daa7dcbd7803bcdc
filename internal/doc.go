// Package internal holds code private to authcore.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - envconfig: environment and .env loading for the binaries
//   - flows: pure-function orchestrators for every Engine operation
//   - ids: account ids, refresh-token digests and fingerprints
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
