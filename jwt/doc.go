// Package jwt issues and verifies the two bearer token kinds used by authcore:
// short-lived access tokens and long-lived refresh tokens.
//
// Each kind is signed with its own HS256 secret and carries a kind claim, so a
// token of one kind never verifies as the other. Every token is bound to the
// configured issuer and audience and carries a unique id.
package jwt
