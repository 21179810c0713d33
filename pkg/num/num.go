// Package num defines the scalar constraint shared by the matrix
// kernel and layer container: any ordered numeric type the network
// can compute with.
package num

import "golang.org/x/exp/constraints"

// Num is the scalar type bound for Matrix/Vector and layer buffers.
// The network engine itself always instantiates float64; integer
// scalars are supported at the matrix-kernel level so operations like
// the identity-multiply property test can be checked exactly.
type Num interface {
	constraints.Integer | constraints.Float
}
