package cctv

import "errors"

var (
	// ErrServiceUnavailable indicates the metadata service could not be
	// reached: connection refused, DNS failure or timeout.
	ErrServiceUnavailable = errors.New("metadata service unreachable")

	// ErrAPIFailure indicates the service answered but reported an
	// error: a non-2xx status, success=false, or an undecodable body.
	ErrAPIFailure = errors.New("metadata service reported failure")

	// ErrTokenRejected indicates the token endpoint answered but did
	// not issue a usable access token.
	ErrTokenRejected = errors.New("token endpoint rejected request")
)
