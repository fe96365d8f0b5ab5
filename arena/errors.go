package arena

import "errors"

var (
	// ErrExhausted is returned when growth would move the break past the limit.
	ErrExhausted = errors.New("arena: exhausted")
	// ErrNegativeGrow is returned for a negative growth delta. The break never shrinks.
	ErrNegativeGrow = errors.New("arena: negative growth")
	// ErrClosed is returned when operating on a closed arena.
	ErrClosed = errors.New("arena: closed")
	// ErrEmptyFile is returned by Load for a zero-length file.
	ErrEmptyFile = errors.New("arena: empty file")
)
