package jwt

import "errors"

var (
	ErrConfiguration  = errors.New("jwt: invalid configuration")
	ErrInvalidSubject = errors.New("jwt: subject id and email are required")
	ErrExpired        = errors.New("jwt: token expired")
	ErrMalformed      = errors.New("jwt: token malformed")
	ErrWrongKind      = errors.New("jwt: wrong token kind")
)
