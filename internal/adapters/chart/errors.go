package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrNoData = errors.New("nothing to plot")
)
