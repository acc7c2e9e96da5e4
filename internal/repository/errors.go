package repository

import "errors"

var (
	// ErrStatusConflict reports that a compare-and-swap on a status column found
	// the row in a different state than expected.
	ErrStatusConflict = errors.New("status precondition failed")
	// ErrInUse reports that a row cannot be deleted while other rows reference it.
	ErrInUse = errors.New("record is still referenced")
)
