package status

import "errors"

var (
	ErrUnavailable = errors.New("facility: no free slot available")
	ErrNotFound    = errors.New("ticket: ticket not found")
	ErrNotPaid     = errors.New("ticket: ticket not paid")
)
