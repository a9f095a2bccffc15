package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrStaleToken indicates a conditional refresh-token update lost to a
	// concurrent rotation or logout.
	ErrStaleToken = errors.New("refresh token superseded")
)
