// Package password implements one-way password hashing, constant-time comparison
// and a pure strength assessment.
//
// # Algorithms
//
// Two encodings are produced and recognised:
//
//	$2a$<cost>$<salt+hash>                                bcrypt (default)
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Hasher.Compare] dispatches on the stored prefix, so a deployment can switch the
// configured algorithm without invalidating existing hashes. [Hasher.NeedsUpgrade]
// reports hashes produced by another algorithm or a weaker work factor so callers
// can re-hash after the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing, verification and the strength policy only. Whether the
// policy is enforced before hashing is the caller's decision.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other authcore package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
