package network

import "errors"

var (
	// ErrInvalidDepth signals a network built with fewer than three
	// layers (input, at least one hidden, output).
	ErrInvalidDepth = errors.New("network: form must have at least 3 layers")

	// ErrIoFailure signals save or load could not access the
	// filesystem.
	ErrIoFailure = errors.New("network: io failure")

	// ErrCorruptModel signals a decoded model file failed a length
	// or structural invariant.
	ErrCorruptModel = errors.New("network: corrupt model file")
)
