// Package middleware adapts authcore to net/http.
//
// # Access tokens
//
// [RequireAccess] reads the Authorization header, calls Engine.ValidateAccess
// and injects the verified subject into the request context, where
// [SubjectFromContext] finds it. Validation never touches the store.
//
// # Refresh tokens
//
// Refresh tokens travel only as a side-channel credential: an HttpOnly,
// Secure, SameSite=Strict cookie written by [SetRefreshCookie] and read back
// by [RefreshCookie]. They never appear in a response body.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself; every decision is delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access the credential store.
//   - Put a refresh token in a response body or a readable cookie.
package middleware
