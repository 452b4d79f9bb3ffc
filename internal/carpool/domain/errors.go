package domain

import "errors"

// Domain errors
var (
	ErrUnauthenticated  = errors.New("no authenticated caller")
	ErrNotOwner         = errors.New("caller is not the ride owner")
	ErrDuplicateRequest = errors.New("a request for this ride already exists")
	ErrNoSeatsAvailable = errors.New("no seats available")
	ErrSelfBlock        = errors.New("cannot block yourself")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
