package matrix

import "github.com/MattanMohel/net-rs/pkg/num"

// The methods below shadow the ones Vector inherits by embedding
// Matrix[N]: the promoted versions return a bare Matrix[N], which
// would force every call site in pkg/network back through ToVector.
// Since a Vector's shape invariant (cols == 1) is preserved by all of
// these operations, re-wrapping here keeps call sites vector-typed.

// Clone returns a deep copy.
func (v Vector[N]) Clone() Vector[N] {
	return Vector[N]{v.Matrix.Clone()}
}

// CopyFrom overwrites v's elements with b's, in place and without
// allocation.
func (v Vector[N]) CopyFrom(b Vector[N]) error {
	return v.Matrix.CopyFrom(b.Matrix)
}

// Map returns a new Vector with f applied element-wise.
func (v Vector[N]) Map(f func(N) N) Vector[N] {
	return Vector[N]{v.Matrix.Map(f)}
}

// Scale returns a new Vector scaled by s.
func (v Vector[N]) Scale(s N) Vector[N] {
	return Vector[N]{v.Matrix.Scale(s)}
}

// AddInPlace adds b into v in place.
func (v Vector[N]) AddInPlace(b Vector[N]) error {
	return v.Matrix.AddInPlace(b.Matrix)
}

// SubInPlace subtracts b from v in place.
func (v Vector[N]) SubInPlace(b Vector[N]) error {
	return v.Matrix.SubInPlace(b.Matrix)
}

// DotInPlace Hadamard-multiplies b into v in place.
func (v Vector[N]) DotInPlace(b Vector[N]) error {
	return v.Matrix.DotInPlace(b.Matrix)
}

// VecSub returns the new Vector a - b.
func VecSub[N num.Num](a, b Vector[N]) (Vector[N], error) {
	m, err := Sub(a.Matrix, b.Matrix)
	if err != nil {
		return Vector[N]{}, err
	}
	return Vector[N]{m}, nil
}

// VecAdd returns the new Vector a + b.
func VecAdd[N num.Num](a, b Vector[N]) (Vector[N], error) {
	m, err := Add(a.Matrix, b.Matrix)
	if err != nil {
		return Vector[N]{}, err
	}
	return Vector[N]{m}, nil
}

// VecDot returns the new Hadamard product a . b.
func VecDot[N num.Num](a, b Vector[N]) (Vector[N], error) {
	m, err := Dot(a.Matrix, b.Matrix)
	if err != nil {
		return Vector[N]{}, err
	}
	return Vector[N]{m}, nil
}
