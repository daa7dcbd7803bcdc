// Package oidc turns a provider's OpenID Connect ID token into an
// authcore.FederatedProfile that Engine.FederatedSignIn can trust.
//
// [Verifier] checks the token signature, issuer, audience and expiry with
// go-oidc, refuses addresses the provider has not verified and maps the
// standard claims (sub, email, given_name, family_name, picture).
// [Exchanger] redeems an authorization code with golang.org/x/oauth2 and
// verifies the ID token that comes back.
//
// # Architecture boundaries
//
// This package proves an external identity. Account resolution, linking and
// token issuance stay in the Engine.
//
// # What this package must NOT do
//
//   - Render redirect or consent pages.
//   - Store provider access or refresh tokens.
//   - Call the credential store.
package oidc
