// Package store defines the persistence contract behind authcore: accounts and
// refresh-token records.
//
// Implementations live in subpackages (memory, postgres, sqlite, redis) and share
// the conformance suite in storetest. A store holds no business rules; it only
// guarantees single-row atomicity, unique email and federated identity, and
// cascade deletion of refresh tokens with their account.
//
// Find methods return (nil, nil) when the entity is absent. Mutations that target
// a missing row return [ErrNotFound].
package store
