package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrEmptyInput    = errors.New("input has no header row")
	ErrMissingColumn = errors.New("required column missing")
	ErrMalformedRow  = errors.New("malformed row")
)
