// Package network implements the training engine: owns weights,
// biases, and every scratch buffer; implements the forward pass,
// back-propagation, gradient accumulation/application, the epoch/
// mini-batch training loop, accuracy, and persistence.
package network

import (
	"fmt"
	"math/rand"

	"github.com/MattanMohel/net-rs/pkg/config"
	"github.com/MattanMohel/net-rs/pkg/cost"
	"github.com/MattanMohel/net-rs/pkg/layer"
	"github.com/MattanMohel/net-rs/pkg/matrix"
	"github.com/MattanMohel/net-rs/pkg/step"
)

// Network is a depth-L feed-forward multi-layer perceptron. Every
// per-sample buffer is allocated once at construction and reused.
// Forward and BackProp write into these buffers through
// CopyFrom/MapInPlace/the *To multiply variants rather than rebinding
// them to freshly allocated values. The hot path is not free of
// allocation: Forward returns a newly allocated copy of the output
// activation (BackProp calls Forward), and the float64 MulT1To/MulT2To
// path copies its operands into gonum matrices.
type Network struct {
	hyper  config.Hyperparameters
	act    step.Func
	costFn cost.Func

	weights layer.Array[matrix.Matrix[float64]] // L-1, weights[l]: (n_{l+1}, n_l)
	biases  layer.Array[matrix.Vector[float64]] // L-1, biases[l]: (n_{l+1})

	activations layer.Array[matrix.Vector[float64]] // L, activations[l]: (n_l)
	sums        layer.Array[matrix.Vector[float64]] // L-1, sums[l]: (n_{l+1})
	deriv       layer.Array[matrix.Vector[float64]] // L-1, scratch for act.Deriv(sums[l])

	err    layer.Array[matrix.Vector[float64]] // L-1
	accErr layer.Array[matrix.Vector[float64]] // L-1

	wErr    layer.Array[matrix.Matrix[float64]] // L-1
	accWErr layer.Array[matrix.Matrix[float64]] // L-1

	accSamples int
}

// New builds a Network from h, seeding weights from a process-local
// PRNG. See NewSeeded for reproducible construction.
func New(h config.Hyperparameters) (*Network, error) {
	return NewSeeded(rand.Int63(), h)
}

// NewSeeded builds a Network from h, drawing initial weights from a
// PRNG seeded with seed — the seeded constructor the source's
// random-seeding design note calls for, letting tests reproduce
// initialization deterministically.
func NewSeeded(seed int64, h config.Hyperparameters) (*Network, error) {
	form := h.Form
	l := len(form)
	if l < 3 {
		return nil, fmt.Errorf("%w: got %d layers", ErrInvalidDepth, l)
	}
	for _, n := range form {
		if n < 1 {
			return nil, fmt.Errorf("%w: non-positive layer width in %v", ErrInvalidDepth, form)
		}
	}

	act, err := step.Lookup(h.Activation)
	if err != nil {
		return nil, err
	}
	costFn, err := cost.Lookup(h.Cost)
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(seed))

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
		if err != nil {
			return nil, err
		}
		weights[i] = w

		b, err := matrix.NewVector[float64](form[i + 1])
		if err != nil {
			return nil, err
		}
		biases[i] = b

		s, err := matrix.NewVector[float64](form[i + 1])
		if err != nil {
			return nil, err
		}
		sums[i] = s

		d, err := matrix.NewVector[float64](form[i + 1])
		if err != nil {
			return nil, err
		}
		derivs[i] = d

		e, err := matrix.NewVector[float64](form[i + 1])
		if err != nil {
			return nil, err
		}
		errs[i] = e

		ae, err := matrix.NewVector[float64](form[i + 1])
		if err != nil {
			return nil, err
		}
		accErrs[i] = ae

		we, err := matrix.Zeros[float64](form[i+1], form[i])
		if err != nil {
			return nil, err
		}
		wErrs[i] = we

		awe, err := matrix.Zeros[float64](form[i+1], form[i])
		if err != nil {
			return nil, err
		}
		accWErrs[i] = awe
	}

	activations := make([]matrix.Vector[float64], l)
	for i := 0; i < l; i++ {
		a, err := matrix.NewVector[float64](form[i])
		if err != nil {
			return nil, err
		}
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

	return n, nil
}

// Form returns the layer-width architecture.
func (n *Network) Form() []int { return n.hyper.Form }

// Hyperparameters returns the configuration the network was built
// with.
func (n *Network) Hyperparameters() config.Hyperparameters { return n.hyper }

// Depth returns L, the number of layers including input and output.
func (n *Network) Depth() int { return n.activations.Len() }

// Forward runs the forward pass on x and returns the output layer's
// activation. Precondition: x.Rows() == form[0]. Mutates the
// network's activations/sums scratch buffers but never weights or
// biases.
func (n *Network) Forward(x matrix.Vector[float64]) (matrix.Vector[float64], error) {
	if x.Rows() != n.activations.Front(0).Rows() {
		return matrix.Vector[float64]{}, fmt.Errorf("%w: input has %d rows, want %d",
			matrix.ErrShapeMismatch, x.Rows(), n.activations.Front(0).Rows())
	}
	if err := n.activations.Front(0).CopyFrom(x); err != nil {
		return matrix.Vector[float64]{}, err
	}

	for l := 0; l < n.weights.Len(); l++ {
		w := n.weights.Front(l)
		b := n.biases.Front(l)
		sum := n.sums.Front(l)
		in := n.activations.Front(l)

		if err := matrix.MulTo(&sum.Matrix, *w, in.Matrix); err != nil {
			return matrix.Vector[float64]{}, err
		}
		if err := sum.AddInPlace(*b); err != nil {
			return matrix.Vector[float64]{}, err
		}

		next := n.activations.Front(l + 1)
		if err := next.CopyFrom(*sum); err != nil {
			return matrix.Vector[float64]{}, err
		}
		next.MapInPlace(n.act.Value)
	}

	return n.activations.Back(0).Clone(), nil
}

// BackProp runs the forward pass on x, then populates err and wErr
// for every layer given target y. The output-layer error is
// err[back(0)] = (y - activations[back(0)]) . cost.deriv . act.deriv;
// propagation then walks backward, stopping after computing
// w_err[back(L-2)] without propagating past the first hidden layer.
func (n *Network) BackProp(x, y matrix.Vector[float64]) error {
	if _, err := n.Forward(x); err != nil {
		return err
	}

	lastW := n.weights.Len() - 1 // index of the last weight layer, i.e. back(0)

	// Output-layer error, computed directly into the preallocated
	// err.Back(0) scratch: copy in the target, subtract the output in
	// place, then fold in cost.deriv and act.deriv.
	out := n.activations.Back(0)
	errBack0 := n.err.Back(0)
	if err := errBack0.CopyFrom(y); err != nil {
		return err
	}
	if err := errBack0.SubInPlace(*out); err != nil {
		return err
	}
	errBack0.MapInPlace(n.costFn.Deriv)

	outSum := n.sums.Back(0)
	derivBack0 := n.deriv.Back(0)
	if err := derivBack0.CopyFrom(*outSum); err != nil {
		return err
	}
	derivBack0.MapInPlace(n.act.Deriv)
	if err := errBack0.DotInPlace(*derivBack0); err != nil {
		return err
	}

	for l := 0; l <= lastW; l++ {
		errBackL := n.err.Back(l)
		actBackL1 := n.activations.Back(l + 1)
		wErrBackL := n.wErr.Back(l)

		if err := matrix.MulT2To(wErrBackL, errBackL.Matrix, actBackL1.Matrix); err != nil {
			return err
		}

		if l == lastW {
			break // the first hidden layer's error is not propagated further
		}

		weightsBackL := n.weights.Back(l)
		errBackL1 := n.err.Back(l + 1)
		if err := matrix.MulT1To(&errBackL1.Matrix, *weightsBackL, errBackL.Matrix); err != nil {
			return err
		}

		sumBackL1 := n.sums.Back(l + 1)
		derivBackL1 := n.deriv.Back(l + 1)
		if err := derivBackL1.CopyFrom(*sumBackL1); err != nil {
			return err
		}
		derivBackL1.MapInPlace(n.act.Deriv)
		if err := errBackL1.DotInPlace(*derivBackL1); err != nil {
			return err
		}
	}

	return nil
}

// Accumulate folds the current per-step err/wErr into the running
// acc_err/acc_w_err totals and increments acc_samples.
func (n *Network) Accumulate() error {
	for l := 0; l < n.err.Len(); l++ {
		if err := n.accErr.Front(l).AddInPlace(*n.err.Front(l)); err != nil {
			return err
		}
		if err := n.accWErr.Front(l).AddInPlace(*n.wErr.Front(l)); err != nil {
			return err
		}
	}
	n.accSamples++
	return nil
}

// ApplyGradient applies the accumulated gradient scaled by
// learn_rate/n to weights and biases, then resets the accumulators.
func (n *Network) ApplyGradient(samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%w: apply_gradient requires a positive sample count, got %d", matrix.ErrShapeMismatch, samples)
	}
	scale := n.hyper.LearnRate / float64(samples)

	for l := 0; l < n.weights.Len(); l++ {
		bDelta := n.accErr.Front(l).Scale(scale)
		if err := n.biases.Front(l).AddInPlace(bDelta); err != nil {
			return err
		}
		wDelta := n.accWErr.Front(l).Scale(scale)
		if err := n.weights.Front(l).AddInPlace(wDelta); err != nil {
			return err
		}
	}

	n.resetAccumulators()
	return nil
}

func (n *Network) resetAccumulators() {
	n.accErr.BulkZero(func(v *matrix.Vector[float64]) { v.Fill(0) })
	n.accWErr.BulkZero(func(m *matrix.Matrix[float64]) { m.Fill(0) })
	n.accSamples = 0
}

// Train runs the mini-batch SGD driver: back-prop + accumulate on
// every sample, applying the gradient every batch_size samples and
// flushing a shorter tail batch at the end of each epoch. Input
// ordering across epochs is exactly as the caller supplies it — the
// engine never shuffles.
func (n *Network) Train(inputs, targets []matrix.Vector[float64], epochs int) error {
	if len(inputs) != len(targets) {
		return fmt.Errorf("%w: %d inputs, %d targets", matrix.ErrShapeMismatch, len(inputs), len(targets))
	}

	for epoch := 0; epoch < epochs; epoch++ {
		n.resetAccumulators()

		for i := range inputs {
			if err := n.BackProp(inputs[i], targets[i]); err != nil {
				return err
			}
			if err := n.Accumulate(); err != nil {
				return err
			}
			if n.accSamples == n.hyper.BatchSize {
				if err := n.ApplyGradient(n.hyper.BatchSize); err != nil {
					return err
				}
			}
		}
		if n.accSamples != 0 {
			if err := n.ApplyGradient(n.accSamples); err != nil {
				return err
			}
		}

		if n.hyper.StatEpoch {
			fmt.Printf("epoch %d/%d complete\n", epoch+1, epochs)
		}
		if n.hyper.StatError {
			acc, err := n.Accuracy(inputs, targets)
			if err != nil {
				return err
			}
			fmt.Printf("epoch %d/%d accuracy: %.4f\n", epoch+1, epochs, acc)
		}
	}

	return nil
}

// Accuracy returns the fraction of samples for which
// Forward(xs[i]).Argmax() == ys[i].Argmax().
func (n *Network) Accuracy(xs, ys []matrix.Vector[float64]) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: %d inputs, %d targets", matrix.ErrShapeMismatch, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return 0, nil
	}
	correct := 0
	for i := range xs {
		out, err := n.Forward(xs[i])
		if err != nil {
			return 0, err
		}
		if out.Argmax() == ys[i].Argmax() {
			correct++
		}
	}
	return float64(correct) / float64(len(xs)), nil
}
