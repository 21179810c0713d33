package network

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/MattanMohel/net-rs/pkg/config"
	"github.com/MattanMohel/net-rs/pkg/cost"
	"github.com/MattanMohel/net-rs/pkg/layer"
	"github.com/MattanMohel/net-rs/pkg/matrix"
	"github.com/MattanMohel/net-rs/pkg/step"
	"github.com/stretchr/testify/assert"
)

func buildNetwork(t *testing.T, form []int, weights [][]float64, biases []float64, act step.Kind) *Network {
	t.Helper()
	h, err := config.NewBuilder(form).Activation(act).Cost(cost.Quadratic).Build()
	assert.NoError(t, err)

	n := newRawNetwork(t, form, h)

	for l, w := range weights {
		m, err := matrix.FromRows(rowsOf(w, n.weights.Front(l).Rows(), n.weights.Front(l).Cols()))
		assert.NoError(t, err)
		*n.weights.Front(l) = m
	}
	for l, b := range biases {
		v, err := matrix.VectorFromSlice([]float64{b})
		assert.NoError(t, err)
		*n.biases.Front(l) = v
	}
	return n
}

func rowsOf(flat []float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = flat[r*cols : (r+1)*cols]
	}
	return out
}

// newRawNetwork builds a *Network the way NewSeeded does but without
// the L>=3 depth guard, so the degenerate two-layer (no hidden layer)
// scenarios from the worked examples can be exercised directly: the
// forward/back-prop math places no real requirement on L, the guard
// exists only to reject configurations the public builder shouldn't
// accept.
func newRawNetwork(t *testing.T, form []int, h config.Hyperparameters) *Network {
	t.Helper()
	h.Form = form

	act, err := step.Lookup(h.Activation)
	assert.NoError(t, err)
	costFn, err := cost.Lookup(h.Cost)
	assert.NoError(t, err)

	r := rand.New(rand.NewSource(1))
	l := len(form)

	n := &Network{hyper: h, act: act, costFn: costFn}

	weights := make([]matrix.Matrix[float64], l-1)
	biases := make([]matrix.Vector[float64], l-1)
	sums := make([]matrix.Vector[float64], l-1)
	derivs := make([]matrix.Vector[float64], l-1)
	errs := make([]matrix.Vector[float64], l-1)
	accErrs := make([]matrix.Vector[float64], l-1)
	wErrs := make([]matrix.Matrix[float64], l-1)
	accWErrs := make([]matrix.Matrix[float64], l-1)

	for i := 0; i < l-1; i++ {
		w, err := matrix.RandomSeeded[float64](form[i+1], form[i], r)
		assert.NoError(t, err)
		weights[i] = w

		b, err := matrix.NewVector[float64](form[i + 1])
		assert.NoError(t, err)
		biases[i] = b

		s, err := matrix.NewVector[float64](form[i + 1])
		assert.NoError(t, err)
		sums[i] = s

		d, err := matrix.NewVector[float64](form[i + 1])
		assert.NoError(t, err)
		derivs[i] = d

		e, err := matrix.NewVector[float64](form[i + 1])
		assert.NoError(t, err)
		errs[i] = e

		ae, err := matrix.NewVector[float64](form[i + 1])
		assert.NoError(t, err)
		accErrs[i] = ae

		we, err := matrix.Zeros[float64](form[i+1], form[i])
		assert.NoError(t, err)
		wErrs[i] = we

		awe, err := matrix.Zeros[float64](form[i+1], form[i])
		assert.NoError(t, err)
		accWErrs[i] = awe
	}

	activations := make([]matrix.Vector[float64], l)
	for i := 0; i < l; i++ {
		a, err := matrix.NewVector[float64](form[i])
		assert.NoError(t, err)
		activations[i] = a
	}

	n.weights = layer.FromSlice(weights)
	n.biases = layer.FromSlice(biases)
	n.sums = layer.FromSlice(sums)
	n.deriv = layer.FromSlice(derivs)
	n.err = layer.FromSlice(errs)
	n.accErr = layer.FromSlice(accErrs)
	n.wErr = layer.FromSlice(wErrs)
	n.accWErr = layer.FromSlice(accWErrs)
	n.activations = layer.FromSlice(activations)

	return n
}

func TestInvalidDepth(t *testing.T) {
	h, err := config.NewBuilder([]int{2, 3}).Build()
	assert.NoError(t, err)

	_, err = New(h)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

// TestSigmoidForward is end-to-end scenario 2: form=[2,1],
// weights[0]=[[0,0]], biases[0]=[0], input=[1,-1] -> output = 0.5.
func TestSigmoidForward(t *testing.T) {
	assert := assert.New(t)

	n := buildNetwork(t, []int{2, 1}, [][]float64{{0, 0}}, []float64{0}, step.Sigmoid)

	x, err := matrix.VectorFromSlice([]float64{1.0, -1.0})
	assert.NoError(err)

	out, err := n.Forward(x)
	assert.NoError(err)
	assert.InDelta(0.5, out.At(0), 1e-6)
}

// TestOneTrainingStep is end-to-end scenario 3: form=[1,1],
// weights[0]=[[0.5]], biases[0]=[0], eta=1.0, batch_size=1,
// input=[2.0], target=[3.0]. Forward = 1.0, residual d = 2.0,
// err[back(0)] = 4, w_err = 8, new weight = 8.5, new bias = 4,
// forward afterward on [2.0] = 21.0.
func TestOneTrainingStep(t *testing.T) {
	assert := assert.New(t)

	h, err := config.NewBuilder([]int{1, 1}).
		Activation(step.Linear).
		Cost(cost.Quadratic).
		LearnRate(1.0).
		BatchSize(1).
		Build()
	assert.NoError(err)

	n := newRawNetwork(t, []int{1, 1}, h)
	*n.weights.Front(0), _ = matrix.FromRows([][]float64{{0.5}})
	*n.biases.Front(0), _ = matrix.VectorFromSlice([]float64{0})

	x, _ := matrix.VectorFromSlice([]float64{2.0})
	y, _ := matrix.VectorFromSlice([]float64{3.0})

	assert.NoError(n.BackProp(x, y))
	assert.InDelta(4.0, n.err.Back(0).At(0), 1e-9)
	assert.InDelta(8.0, n.wErr.Back(0).At(0, 0), 1e-9)

	assert.NoError(n.Accumulate())
	assert.NoError(n.ApplyGradient(1))

	assert.InDelta(8.5, n.weights.Front(0).At(0, 0), 1e-9)
	assert.InDelta(4.0, n.biases.Front(0).At(0), 1e-9)

	out, err := n.Forward(x)
	assert.NoError(err)
	assert.InDelta(21.0, out.At(0), 1e-9)
}

// TestMiniBatchAveraging is end-to-end scenario 4: same network as
// scenario 3, two identical samples, batch_size=2, eta=1.0 ->
// accumulated err = 8, acc_w_err = 16, scale = 0.5, new weight = 8.5.
func TestMiniBatchAveraging(t *testing.T) {
	assert := assert.New(t)

	h, err := config.NewBuilder([]int{1, 1}).
		Activation(step.Linear).
		Cost(cost.Quadratic).
		LearnRate(1.0).
		BatchSize(2).
		Build()
	assert.NoError(err)

	n := newRawNetwork(t, []int{1, 1}, h)
	*n.weights.Front(0), _ = matrix.FromRows([][]float64{{0.5}})
	*n.biases.Front(0), _ = matrix.VectorFromSlice([]float64{0})

	x, _ := matrix.VectorFromSlice([]float64{2.0})
	y, _ := matrix.VectorFromSlice([]float64{3.0})

	assert.NoError(n.Train([]matrix.Vector[float64]{x, x}, []matrix.Vector[float64]{y, y}, 1))
	assert.InDelta(8.5, n.weights.Front(0).At(0, 0), 1e-9)
}

// TestThreeLayerBackProp is end-to-end scenario 6: checks err[back(0)]
// and err[back(1)] of an L=3 sigmoid network against hand-computed
// values, and that the first hidden layer's error is non-zero,
// resolving the first-hidden-layer bias update design note.
func TestThreeLayerBackProp(t *testing.T) {
	assert := assert.New(t)

	n := buildNetwork(t, []int{2, 2, 1},
		[][]float64{{0.1, 0.2, 0.3, 0.4}, {0.5, 0.6}},
		[]float64{0, 0},
		step.Sigmoid)
	// biases[0] has 2 elements; override directly.
	b0, _ := matrix.VectorFromSlice([]float64{0, 0})
	*n.biases.Front(0) = b0

	x, _ := matrix.VectorFromSlice([]float64{1.0, 0.5})
	y, _ := matrix.VectorFromSlice([]float64{1.0})

	assert.NoError(n.BackProp(x, y))

	// err[back(0)] is the output layer's error (1 element):
	// z2 = 0.5*sigma(0.2) + 0.6*sigma(0.5) ~= 0.648393,
	// 2*(1 - sigma(z2))*sigma'(z2) ~= 0.154825.
	assert.Equal(1, n.err.Back(0).Rows())
	assert.InDelta(0.1548252, n.err.Back(0).At(0), 1e-6)
	// err[back(1)] is the first hidden layer's error (2 elements)
	// and must have been populated during propagation, not left zero.
	assert.Equal(2, n.err.Back(1).Rows())
	nonZero := false
	for i := 0; i < n.err.Back(1).Rows(); i++ {
		if n.err.Back(1).At(i) != 0 {
			nonZero = true
		}
	}
	assert.True(nonZero)
	// err[back(1)][i] = weights[1][0][i] * err[back(0)] * sigma'(z1[i]).
	assert.InDelta(0.0191609, n.err.Back(1).At(0), 1e-6)
	assert.InDelta(0.0218307, n.err.Back(1).At(1), 1e-6)
}

func TestForwardIsDeterministic(t *testing.T) {
	assert := assert.New(t)

	h, err := config.NewBuilder([]int{3, 4, 2}).Build()
	assert.NoError(err)
	n, err := NewSeeded(7, h)
	assert.NoError(err)

	x, _ := matrix.VectorFromSlice([]float64{0.1, 0.2, 0.3})
	out1, err := n.Forward(x)
	assert.NoError(err)
	out2, err := n.Forward(x)
	assert.NoError(err)
	assert.Equal(out1.Buf(), out2.Buf())
}

func TestAccuracy(t *testing.T) {
	assert := assert.New(t)

	h, err := config.NewBuilder([]int{2, 3, 2}).Build()
	assert.NoError(err)
	n, err := NewSeeded(3, h)
	assert.NoError(err)

	x1, _ := matrix.VectorFromSlice([]float64{0.1, 0.2})
	y1, _ := matrix.OneHot[float64](2, 0)
	acc, err := n.Accuracy([]matrix.Vector[float64]{x1}, []matrix.Vector[float64]{y1})
	assert.NoError(err)
	assert.True(acc == 0 || acc == 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	h, err := config.NewBuilder([]int{3, 4, 2}).Build()
	assert.NoError(err)
	n, err := NewSeeded(42, h)
	assert.NoError(err)

	path := filepath.Join(t.TempDir(), "model.json")
	assert.NoError(n.Save(path))

	loaded, err := LoadFrom(path)
	assert.NoError(err)

	x, _ := matrix.VectorFromSlice([]float64{0.2, -0.4, 0.7})
	want, err := n.Forward(x)
	assert.NoError(err)
	got, err := loaded.Forward(x)
	assert.NoError(err)
	assert.Equal(want.Buf(), got.Buf())
}

func TestLoadFromRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	assert.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, ErrCorruptModel)
}

func TestEpochConvergence(t *testing.T) {
	assert := assert.New(t)

	h, err := config.NewBuilder([]int{1, 2, 1}).
		Activation(step.Sigmoid).
		LearnRate(0.5).
		BatchSize(1).
		Build()
	assert.NoError(err)
	n, err := NewSeeded(5, h)
	assert.NoError(err)

	x, _ := matrix.VectorFromSlice([]float64{0.3})
	y, _ := matrix.VectorFromSlice([]float64{0.9})

	costAt := func() float64 {
		out, _ := n.Forward(x)
		d := y.At(0) - out.At(0)
		return d * d
	}

	prev := costAt()
	for e := 0; e < 20; e++ {
		assert.NoError(n.Train([]matrix.Vector[float64]{x}, []matrix.Vector[float64]{y}, 1))
		cur := costAt()
		assert.True(cur <= prev+1e-9)
		prev = cur
	}
}
