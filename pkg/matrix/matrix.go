// Package matrix implements the dense linear-algebra kernel: a
// row-major Matrix/Vector pair, element-wise operations, transpose,
// and the three transpose-aware multiply variants used by the
// back-propagation protocol in pkg/network.
//
// Storage is a contiguous row-major buffer; element (r, c) lives at
// buf[r*cols+c]. Shapes are immutable once a Matrix is constructed.
package matrix

import (
	"fmt"
	"math/rand"

	"github.com/MattanMohel/net-rs/pkg/num"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense, row-major (rows x cols) buffer of N.
type Matrix[N num.Num] struct {
	rows, cols int
	buf        []N
}

// Vector is a Matrix with exactly one column, kept as a distinct type
// so call sites read as vector operations. It participates in every
// Matrix op through the embedded Matrix.
type Vector[N num.Num] struct {
	Matrix[N]
}

// Rows returns the row count.
func (m Matrix[N]) Rows() int { return m.rows }

// Cols returns the column count.
func (m Matrix[N]) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m Matrix[N]) Shape() (int, int) { return m.rows, m.cols }

// Buf returns the underlying row-major buffer. Mutating it bypasses
// the Matrix API and is the caller's responsibility.
func (m Matrix[N]) Buf() []N { return m.buf }

func sameShape[N num.Num](a, b Matrix[N]) bool {
	return a.rows == b.rows && a.cols == b.cols
}

// Zeros constructs a (rows, cols) matrix of zero values.
func Zeros[N num.Num](rows, cols int) (Matrix[N], error) {
	if rows < 1 || cols < 1 {
		return Matrix[N]{}, fmt.Errorf("%w: non-positive shape (%d, %d)", ErrShapeMismatch, rows, cols)
	}
	return Matrix[N]{rows: rows, cols: cols, buf: make([]N, rows*cols)}, nil
}

// Filled constructs a (rows, cols) matrix with every element set to v.
func Filled[N num.Num](rows, cols int, v N) (Matrix[N], error) {
	m, err := Zeros[N](rows, cols)
	if err != nil {
		return Matrix[N]{}, err
	}
	m.Fill(v)
	return m, nil
}

// Random constructs a (rows, cols) matrix with elements sampled
// uniformly from [-1, 1]. Uses the process-local math/rand source;
// see network.NewSeeded for reproducible construction.
func Random[N num.Num](rows, cols int) (Matrix[N], error) {
	return RandomSeeded[N](rows, cols, rand.New(rand.NewSource(rand.Int63())))
}

// RandomSeeded is Random but draws from the supplied *rand.Rand,
// letting callers build reproducible networks.
func RandomSeeded[N num.Num](rows, cols int, r *rand.Rand) (Matrix[N], error) {
	m, err := Zeros[N](rows, cols)
	if err != nil {
		return Matrix[N]{}, err
	}
	for i := range m.buf {
		m.buf[i] = N(r.Float64()*2 - 1)
	}
	return m, nil
}

// FromRowMajor constructs a (rows, cols) matrix from a pre-built
// row-major buffer. The buffer is used directly, not copied.
func FromRowMajor[N num.Num](rows, cols int, buf []N) (Matrix[N], error) {
	if rows < 1 || cols < 1 {
		return Matrix[N]{}, fmt.Errorf("%w: non-positive shape (%d, %d)", ErrShapeMismatch, rows, cols)
	}
	if len(buf) != rows*cols {
		return Matrix[N]{}, fmt.Errorf("%w: buffer length %d, want %d", ErrBadBufferLength, len(buf), rows*cols)
	}
	return Matrix[N]{rows: rows, cols: cols, buf: buf}, nil
}

// FromRows constructs a matrix from a 2D literal; every row must have
// the same length.
func FromRows[N num.Num](rows [][]N) (Matrix[N], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Matrix[N]{}, fmt.Errorf("%w: empty literal", ErrShapeMismatch)
	}
	r, c := len(rows), len(rows[0])
	buf := make([]N, 0, r*c)
	for _, row := range rows {
		if len(row) != c {
			return Matrix[N]{}, fmt.Errorf("%w: ragged row length %d, want %d", ErrShapeMismatch, len(row), c)
		}
		buf = append(buf, row...)
	}
	return FromRowMajor(r, c, buf)
}

// NewVector builds a zero (rows, 1) Vector.
func NewVector[N num.Num](rows int) (Vector[N], error) {
	m, err := Zeros[N](rows, 1)
	if err != nil {
		return Vector[N]{}, err
	}
	return Vector[N]{m}, nil
}

// VectorFromSlice builds a Vector directly from a column buffer.
func VectorFromSlice[N num.Num](buf []N) (Vector[N], error) {
	m, err := FromRowMajor(len(buf), 1, buf)
	if err != nil {
		return Vector[N]{}, err
	}
	return Vector[N]{m}, nil
}

// At returns element (r, c).
func (m Matrix[N]) At(r, c int) N { return m.buf[r*m.cols+c] }

// Set assigns element (r, c).
func (m Matrix[N]) Set(r, c int, v N) { m.buf[r*m.cols+c] = v }

// At returns element i of a Vector.
func (v Vector[N]) At(i int) N { return v.buf[i] }

// Set assigns element i of a Vector.
func (v Vector[N]) Set(i int, val N) { v.buf[i] = val }

// Fill sets every element to v.
func (m Matrix[N]) Fill(v N) {
	for i := range m.buf {
		m.buf[i] = v
	}
}

// Clone returns a deep copy.
func (m Matrix[N]) Clone() Matrix[N] {
	buf := make([]N, len(m.buf))
	copy(buf, m.buf)
	return Matrix[N]{rows: m.rows, cols: m.cols, buf: buf}
}

// CopyFrom overwrites m's elements with b's, in place; requires equal
// shape. Unlike Clone, it allocates nothing.
func (m Matrix[N]) CopyFrom(b Matrix[N]) error {
	if !sameShape(m, b) {
		return fmt.Errorf("%w: copy_from %dx%d <- %dx%d", ErrShapeMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	copy(m.buf, b.buf)
	return nil
}

// Transpose returns a new (cols, rows)-shaped matrix with elements
// permuted; involutive: Transpose(Transpose(m)) == m elementwise.
func (m Matrix[N]) Transpose() Matrix[N] {
	out, _ := Zeros[N](m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.Set(c, r, m.At(r, c))
		}
	}
	return out
}

// Map returns a new matrix with f applied element-wise.
func (m Matrix[N]) Map(f func(N) N) Matrix[N] {
	out := m.Clone()
	out.MapInPlace(f)
	return out
}

// MapInPlace applies f element-wise, mutating m.
func (m Matrix[N]) MapInPlace(f func(N) N) {
	for i, v := range m.buf {
		m.buf[i] = f(v)
	}
}

// Scale returns a new matrix scaled by s.
func (m Matrix[N]) Scale(s N) Matrix[N] {
	return m.Map(func(v N) N { return v * s })
}

// ScaleInPlace scales m by s in place.
func (m Matrix[N]) ScaleInPlace(s N) {
	m.MapInPlace(func(v N) N { return v * s })
}

// Add returns a new matrix a + b; fails with ErrShapeMismatch if
// shapes differ.
func Add[N num.Num](a, b Matrix[N]) (Matrix[N], error) {
	out := a.Clone()
	if err := out.AddInPlace(b); err != nil {
		return Matrix[N]{}, err
	}
	return out, nil
}

// AddInPlace adds b into m in place.
func (m Matrix[N]) AddInPlace(b Matrix[N]) error {
	if !sameShape(m, b) {
		return fmt.Errorf("%w: add %dx%d + %dx%d", ErrShapeMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	for i := range m.buf {
		m.buf[i] += b.buf[i]
	}
	return nil
}

// Sub returns a new matrix a - b; fails with ErrShapeMismatch if
// shapes differ.
func Sub[N num.Num](a, b Matrix[N]) (Matrix[N], error) {
	out := a.Clone()
	if err := out.SubInPlace(b); err != nil {
		return Matrix[N]{}, err
	}
	return out, nil
}

// SubInPlace subtracts b from m in place.
func (m Matrix[N]) SubInPlace(b Matrix[N]) error {
	if !sameShape(m, b) {
		return fmt.Errorf("%w: sub %dx%d - %dx%d", ErrShapeMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	for i := range m.buf {
		m.buf[i] -= b.buf[i]
	}
	return nil
}

// Dot returns the new Hadamard (element-wise) product a . b.
func Dot[N num.Num](a, b Matrix[N]) (Matrix[N], error) {
	out := a.Clone()
	if err := out.DotInPlace(b); err != nil {
		return Matrix[N]{}, err
	}
	return out, nil
}

// DotInPlace Hadamard-multiplies b into m in place.
func (m Matrix[N]) DotInPlace(b Matrix[N]) error {
	if !sameShape(m, b) {
		return fmt.Errorf("%w: dot %dx%d . %dx%d", ErrShapeMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	for i := range m.buf {
		m.buf[i] *= b.buf[i]
	}
	return nil
}

// MulTo computes dst <- a*b, requiring a.cols == b.rows and
// dst.shape == (a.rows, b.cols). dst is zeroed before accumulation.
func MulTo[N num.Num](dst *Matrix[N], a, b Matrix[N]) error {
	if a.cols != b.rows {
		return fmt.Errorf("%w: mul_to operand %dx%d * %dx%d", ErrShapeMismatch, a.rows, a.cols, b.rows, b.cols)
	}
	if dst.rows != a.rows || dst.cols != b.cols {
		return fmt.Errorf("%w: mul_to dest %dx%d, want %dx%d", ErrShapeMismatch, dst.rows, dst.cols, a.rows, b.cols)
	}
	dst.Fill(0)
	mulAccumulate(dst, a, b, false, false)
	return nil
}

// MulT1To computes dst <- transpose(a)*b, requiring a.rows == b.rows
// and dst.shape == (a.cols, b.cols).
func MulT1To[N num.Num](dst *Matrix[N], a, b Matrix[N]) error {
	if a.rows != b.rows {
		return fmt.Errorf("%w: mul_t1_to operand %dx%d(t) * %dx%d", ErrShapeMismatch, a.rows, a.cols, b.rows, b.cols)
	}
	if dst.rows != a.cols || dst.cols != b.cols {
		return fmt.Errorf("%w: mul_t1_to dest %dx%d, want %dx%d", ErrShapeMismatch, dst.rows, dst.cols, a.cols, b.cols)
	}
	dst.Fill(0)
	mulAccumulate(dst, a, b, true, false)
	return nil
}

// MulT2To computes dst <- a*transpose(b), requiring a.cols == b.cols
// and dst.shape == (a.rows, b.rows).
func MulT2To[N num.Num](dst *Matrix[N], a, b Matrix[N]) error {
	if a.cols != b.cols {
		return fmt.Errorf("%w: mul_t2_to operand %dx%d * %dx%d(t)", ErrShapeMismatch, a.rows, a.cols, b.rows, b.cols)
	}
	if dst.rows != a.rows || dst.cols != b.rows {
		return fmt.Errorf("%w: mul_t2_to dest %dx%d, want %dx%d", ErrShapeMismatch, dst.rows, dst.cols, a.rows, b.rows)
	}
	dst.Fill(0)
	mulAccumulate(dst, a, b, false, true)
	return nil
}

// Mul allocates and returns a*b.
func Mul[N num.Num](a, b Matrix[N]) (Matrix[N], error) {
	dst, err := Zeros[N](a.rows, b.cols)
	if err != nil {
		return Matrix[N]{}, err
	}
	if err := MulTo(&dst, a, b); err != nil {
		return Matrix[N]{}, err
	}
	return dst, nil
}

// MulT1 allocates and returns transpose(a)*b.
func MulT1[N num.Num](a, b Matrix[N]) (Matrix[N], error) {
	dst, err := Zeros[N](a.cols, b.cols)
	if err != nil {
		return Matrix[N]{}, err
	}
	if err := MulT1To(&dst, a, b); err != nil {
		return Matrix[N]{}, err
	}
	return dst, nil
}

// MulT2 allocates and returns a*transpose(b).
func MulT2[N num.Num](a, b Matrix[N]) (Matrix[N], error) {
	dst, err := Zeros[N](a.rows, b.rows)
	if err != nil {
		return Matrix[N]{}, err
	}
	if err := MulT2To(&dst, a, b); err != nil {
		return Matrix[N]{}, err
	}
	return dst, nil
}

// mulAccumulate dispatches to a BLAS-backed float64 path when N is
// float64 (the "external general matrix-matrix multiply routine"
// the kernel policy permits), otherwise falls back to a row-major
// (unblocked) triple loop shared by every other scalar width.
func mulAccumulate[N num.Num](dst *Matrix[N], a, b Matrix[N], transA, transB bool) {
	if dstBuf, ok := any(dst.buf).([]float64); ok {
		aBuf := any(a.buf).([]float64)
		bBuf := any(b.buf).([]float64)
		mulAccumulateFloat64(dst.rows, dst.cols, dstBuf, a.rows, a.cols, aBuf, b.rows, b.cols, bBuf, transA, transB)
		return
	}
	mulAccumulateLoop(dst, a, b, transA, transB)
}

func mulAccumulateFloat64(dstRows, dstCols int, dstBuf []float64, aRows, aCols int, aBuf []float64, bRows, bCols int, bBuf []float64, transA, transB bool) {
	// The plain (no transpose) case is the hot path for forward
	// propagation's weights*activations product: call blas64.Dgemm
	// directly rather than routing through a mat.Dense wrapper.
	if !transA && !transB {
		blasDgemm(dstRows, dstCols, aCols, aBuf, bBuf, dstBuf)
		return
	}

	ad := mat.NewDense(aRows, aCols, append([]float64(nil), aBuf...))
	bd := mat.NewDense(bRows, bCols, append([]float64(nil), bBuf...))
	out := mat.NewDense(dstRows, dstCols, dstBuf)

	var left, right mat.Matrix = ad, bd
	if transA {
		left = ad.T()
	}
	if transB {
		right = bd.T()
	}
	out.Mul(left, right)

	// mat.Dense.Mul may reallocate internally for a transposed view;
	// copy the result back into the caller's buffer to preserve the
	// preallocated-destination contract.
	copy(dstBuf, out.RawMatrix().Data)
}

func mulAccumulateLoop[N num.Num](dst *Matrix[N], a, b Matrix[N], transA, transB bool) {
	m, n := dst.rows, dst.cols
	var k int
	if transA {
		k = a.rows
	} else {
		k = a.cols
	}
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			var av N
			if transA {
				av = a.At(p, i)
			} else {
				av = a.At(i, p)
			}
			if av == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				var bv N
				if transB {
					bv = b.At(j, p)
				} else {
					bv = b.At(p, j)
				}
				dst.Set(i, j, dst.At(i, j)+av*bv)
			}
		}
	}
}

// ToDiagonal builds an (n, n) matrix with v on the diagonal and zero
// elsewhere; requires v.Cols() == 1.
func ToDiagonal[N num.Num](v Matrix[N]) (Matrix[N], error) {
	if v.cols != 1 {
		return Matrix[N]{}, fmt.Errorf("%w: to_diagonal requires a column vector, got %dx%d", ErrShapeMismatch, v.rows, v.cols)
	}
	out, _ := Zeros[N](v.rows, v.rows)
	for i := 0; i < v.rows; i++ {
		out.Set(i, i, v.At(i, 0))
	}
	return out, nil
}

// ToVector reinterprets m as a Vector; requires m.Cols() == 1.
func ToVector[N num.Num](m Matrix[N]) (Vector[N], error) {
	if m.cols != 1 {
		return Vector[N]{}, fmt.Errorf("%w: to_vector requires a column matrix, got %dx%d", ErrShapeMismatch, m.rows, m.cols)
	}
	return Vector[N]{m}, nil
}

// OneHot returns a length-n vector with 1 at index hot and 0
// elsewhere.
func OneHot[N num.Num](n, hot int) (Vector[N], error) {
	if n < 1 || hot < 0 || hot >= n {
		return Vector[N]{}, fmt.Errorf("%w: one_hot(%d, %d) out of range", ErrShapeMismatch, n, hot)
	}
	v, _ := NewVector[N](n)
	v.Set(hot, 1)
	return v, nil
}

// Argmax returns the index of the largest element, reading the
// Vector in row order (ties resolve to the first occurrence) — the
// "hot index" used for classification readout.
func (v Vector[N]) Argmax() int {
	best := 0
	for i := 1; i < v.rows; i++ {
		if v.At(i) > v.At(best) {
			best = i
		}
	}
	return best
}

// blasDgemm is a direct, lower-level entry point for callers that
// want to multiply into a raw []float64 destination without a
// mat.Dense wrapper.
func blasDgemm(m, n, k int, a, b, c []float64) {
	blas64.Implementation().Dgemm(
		blas64.NoTrans, blas64.NoTrans,
		m, n, k,
		1, a, k,
		b, n,
		1, c, n,
	)
}
