package services

import "errors"

var (
	// ErrUnknownExport is returned for an export table or chart that does
	// not exist.
	ErrUnknownExport = errors.New("export not found")
)
