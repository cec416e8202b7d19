package hints

import "errors"

var (
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("hint cache closed")

	// ErrCorruptSnapshot is returned when a stored snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
