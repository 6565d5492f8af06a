package table

import "errors"

var (
	ErrTooFewTables    = errors.New("merge needs a main table and at least one secondary")
	ErrTableNotFound   = errors.New("table not found")
	ErrInvalidCapacity = errors.New("split capacity must be positive and below the original")
)
