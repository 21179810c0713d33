package matrix

import "errors"

// Sentinel errors from the engine-wide taxonomy that the matrix
// kernel can produce. Callers match with errors.Is.
var (
	// ErrShapeMismatch signals incompatible operand shapes for an
	// arithmetic or conversion operation.
	ErrShapeMismatch = errors.New("matrix: shape mismatch")

	// ErrBadBufferLength signals a buffer whose length disagrees
	// with the shape it's being constructed with.
	ErrBadBufferLength = errors.New("matrix: buffer length disagrees with shape")
)
