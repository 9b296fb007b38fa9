package repository

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrSizeNotFound is returned when a product has no entry for the
	// requested size label.
	ErrSizeNotFound = errors.New("size not found")
	// ErrInsufficientStock is returned when a conditional decrement
	// finds less stock than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
)
