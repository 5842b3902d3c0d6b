package filename

import "errors"

var (
	// ErrMalformedName indicates an identifier does not satisfy the
	// minimum segment count of its grammar.
	ErrMalformedName = errors.New("malformed filename")

	// ErrBadDatetime indicates a datetime string is not valid RFC 3339.
	ErrBadDatetime = errors.New("invalid RFC 3339 datetime")
)
