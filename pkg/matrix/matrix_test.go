package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerosRejectsNonPositiveShape(t *testing.T) {
	assert := assert.New(t)

	_, err := Zeros[float64](0, 3)
	assert.ErrorIs(err, ErrShapeMismatch)

	m, err := Zeros[float64](2, 3)
	assert.NoError(err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(0.0, m.At(i, j))
		}
	}
}

func TestFromRowMajorBadBufferLength(t *testing.T) {
	assert := assert.New(t)

	_, err := FromRowMajor(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(err, ErrBadBufferLength)
}

func TestTransposeInvolutive(t *testing.T) {
	assert := assert.New(t)

	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	assert.NoError(err)

	tt := m.Transpose().Transpose()
	assert.Equal(m.Rows(), tt.Rows())
	assert.Equal(m.Cols(), tt.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			assert.Equal(m.At(i, j), tt.At(i, j))
		}
	}
}

// TestIdentityMultiply is end-to-end scenario 1: A*I == A == A*I^T.
func TestIdentityMultiply(t *testing.T) {
	assert := assert.New(t)

	a, err := FromRows([][]int{{1, 2, 3}, {4, 5, 6}})
	assert.NoError(err)

	ident, err := FromRows([][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	assert.NoError(err)

	c, err := Zeros[int](2, 3)
	assert.NoError(err)
	assert.NoError(MulTo(&c, a, ident))
	assert.Equal(a.buf, c.buf)

	cT2, err := Zeros[int](2, 3)
	assert.NoError(err)
	assert.NoError(MulT2To(&cT2, a, ident))
	assert.Equal(a.buf, cT2.buf)
}

func TestMulT1AgreesWithTransposeThenMul(t *testing.T) {
	assert := assert.New(t)

	a, _ := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	b, _ := FromRows([][]float64{{1, 0}, {0, 1}, {1, 1}})

	got, err := MulT1(a, b)
	assert.NoError(err)

	want, err := Mul(a.Transpose(), b)
	assert.NoError(err)

	assert.InDeltaSlice(want.buf, got.buf, 1e-9)
}

func TestMulT2AgreesWithTransposeThenMul(t *testing.T) {
	assert := assert.New(t)

	a, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	b, _ := FromRows([][]float64{{1, 0}, {0, 1}})

	got, err := MulT2(a, b)
	assert.NoError(err)

	want, err := Mul(a, b.Transpose())
	assert.NoError(err)

	assert.InDeltaSlice(want.buf, got.buf, 1e-9)
}

func TestMulToShapeMismatch(t *testing.T) {
	assert := assert.New(t)

	a, _ := Zeros[float64](2, 3)
	b, _ := Zeros[float64](2, 3)
	dst, _ := Zeros[float64](2, 3)
	assert.ErrorIs(MulTo(&dst, a, b), ErrShapeMismatch)
}

func TestOneHot(t *testing.T) {
	assert := assert.New(t)

	v, err := OneHot[float64](4, 2)
	assert.NoError(err)
	assert.Equal(2, v.Argmax())
	assert.Equal(1.0, v.At(2))

	sum := 0.0
	for i := 0; i < v.Rows(); i++ {
		sum += v.At(i)
	}
	assert.Equal(1.0, sum)

	_, err = OneHot[float64](4, 9)
	assert.ErrorIs(err, ErrShapeMismatch)
}

func TestToDiagonalRequiresColumnVector(t *testing.T) {
	assert := assert.New(t)

	v, _ := FromRows([][]float64{{1}, {2}, {3}})
	d, err := ToDiagonal(v)
	assert.NoError(err)
	assert.Equal(1.0, d.At(0, 0))
	assert.Equal(2.0, d.At(1, 1))
	assert.Equal(3.0, d.At(2, 2))
	assert.Equal(0.0, d.At(0, 1))

	notColumn, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	_, err = ToDiagonal(notColumn)
	assert.ErrorIs(err, ErrShapeMismatch)
}

func TestCopyFromOverwritesInPlace(t *testing.T) {
	assert := assert.New(t)

	dst, _ := Zeros[float64](2, 2)
	src, _ := FromRows([][]float64{{1, 2}, {3, 4}})

	dstBuf := dst.buf
	assert.NoError(dst.CopyFrom(src))
	assert.Equal([]float64{1, 2, 3, 4}, dst.buf)
	// same backing array: CopyFrom must not reallocate.
	assert.Same(&dstBuf[0], &dst.buf[0])

	bad, _ := Zeros[float64](3, 1)
	assert.ErrorIs(dst.CopyFrom(bad), ErrShapeMismatch)
}

func TestAddSubDot(t *testing.T) {
	assert := assert.New(t)

	a, _ := FromRows([][]float64{{1, 2}, {3, 4}})
	b, _ := FromRows([][]float64{{5, 6}, {7, 8}})

	sum, err := Add(a, b)
	assert.NoError(err)
	assert.Equal([]float64{6, 8, 10, 12}, sum.buf)

	diff, err := Sub(a, b)
	assert.NoError(err)
	assert.Equal([]float64{-4, -4, -4, -4}, diff.buf)

	had, err := Dot(a, b)
	assert.NoError(err)
	assert.Equal([]float64{5, 12, 21, 32}, had.buf)
}
