package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrParse    = errors.New("store is not a valid note array")
	ErrRead     = errors.New("store read failed")
	ErrWrite    = errors.New("store write failed")
	ErrLocked   = errors.New("store is locked")
)
