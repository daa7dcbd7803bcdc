// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunRegister, RunLogin, RunRefresh, etc.) accepts the shared
// [Deps] and returns a result value carrying either the outcome or a failure
// classification. The root package maps failure kinds onto its public error
// taxonomy, metrics and audit events.
//
// # Architecture boundaries
//
// Flow functions coordinate the credential store, the token codec and the
// password hasher. They do NOT own any of these resources; ownership stays with
// the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authcore (to avoid import cycles).
//   - Retry store calls or guard protocol state with in-process locks. The
//     store's conditional revoke is the only arbiter of refresh-token use.
package flows
