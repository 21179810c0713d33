package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmoidValueAtZero(t *testing.T) {
	assert := assert.New(t)

	f, err := Lookup(Sigmoid)
	assert.NoError(err)
	assert.InDelta(0.5, f.Value(0), 1e-9)
}

func TestSigmoidDerivMatchesProductForm(t *testing.T) {
	assert := assert.New(t)

	f, err := Lookup(Sigmoid)
	assert.NoError(err)

	for _, x := range []float64{-2, -0.5, 0, 0.5, 2} {
		s := f.Value(x)
		want := s * (1 - s)
		assert.InDelta(want, f.Deriv(x), 1e-9)
	}
}

func TestTanh(t *testing.T) {
	assert := assert.New(t)

	f, err := Lookup(Tanh)
	assert.NoError(err)
	assert.InDelta(0, f.Value(0), 1e-9)
	assert.InDelta(1, f.Deriv(0), 1e-9)
}

func TestLinear(t *testing.T) {
	assert := assert.New(t)

	f, err := Lookup(Linear)
	assert.NoError(err)
	assert.Equal(3.5, f.Value(3.5))
	assert.Equal(1.0, f.Deriv(3.5))
}

func TestLookupUnsupported(t *testing.T) {
	_, err := Lookup("relu")
	assert.Error(t, err)
}
