package repository

import "errors"

// Sentinel kinds for report store errors.
var (
	ErrNotFound     = errors.New("report entry not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrNilReport    = errors.New("nil report")
)
