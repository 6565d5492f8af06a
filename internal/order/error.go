package order

import "errors"

var (
	ErrEmptyDraft   = errors.New("draft order has no items")
	ErrNoDraft      = errors.New("checkout session has no draft order")
	ErrNotEditable  = errors.New("order can no longer be edited")
	ErrItemNotFound = errors.New("order item not found")
)
