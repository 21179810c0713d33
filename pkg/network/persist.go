package network

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MattanMohel/net-rs/pkg/config"
	"github.com/MattanMohel/net-rs/pkg/cost"
	"github.com/MattanMohel/net-rs/pkg/layer"
	"github.com/MattanMohel/net-rs/pkg/matrix"
	"github.com/MattanMohel/net-rs/pkg/step"
)

// modelFile is the self-describing JSON-like textual record the
// model persistence format uses: every hyperparameter plus weights,
// biases, and the gradient accumulators, under stable field names.
type modelFile struct {
	Form       []int                      `json:"form"`
	BatchSize  int                        `json:"batch_size"`
	LearnRate  float64                    `json:"learn_rate"`
	Activation string                     `json:"activation"`
	Cost       string                     `json:"cost"`
	SavePath   string                     `json:"save_path"`
	StatEpoch  bool                       `json:"stat_epoch"`
	StatError  bool                       `json:"stat_error"`
	Weights    []matrix.Matrix[float64]   `json:"weights"`
	Biases     []matrix.Vector[float64]   `json:"biases"`
	AccWErr    []matrix.Matrix[float64]   `json:"acc_w_err"`
	AccErr     []matrix.Vector[float64]   `json:"acc_err"`
	AccSamples int                        `json:"acc_samples"`
}

// Save serializes the network's full state (hyperparameters,
// weights, biases, and the gradient accumulators) to path. Scratch
// buffers (activations, sums, err, w_err) are pure per-step working
// memory and are not persisted.
func (n *Network) Save(path string) error {
	mf := modelFile{
		Form:       n.hyper.Form,
		BatchSize:  n.hyper.BatchSize,
		LearnRate:  n.hyper.LearnRate,
		Activation: string(n.hyper.Activation),
		Cost:       string(n.hyper.Cost),
		SavePath:   n.hyper.SavePath,
		StatEpoch:  n.hyper.StatEpoch,
		StatError:  n.hyper.StatError,
		Weights:    n.weights.Slice(),
		Biases:     n.biases.Slice(),
		AccWErr:    n.accWErr.Slice(),
		AccErr:     n.accErr.Slice(),
		AccSamples: n.accSamples,
	}

	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	return nil
}

// LoadFrom reads and reconstructs a Network from path. Scratch
// buffers (activations, sums, err, w_err) are re-zeroed on load, not
// read from the file.
func LoadFrom(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailure, err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	if len(mf.Form) < 3 {
		return nil, fmt.Errorf("%w: form has %d layers", ErrCorruptModel, len(mf.Form))
	}
	if len(mf.Weights) != len(mf.Form)-1 || len(mf.Biases) != len(mf.Form)-1 {
		return nil, fmt.Errorf("%w: weight/bias count disagrees with form", ErrCorruptModel)
	}

	hyper := config.Hyperparameters{
		Form:       mf.Form,
		BatchSize:  mf.BatchSize,
		LearnRate:  mf.LearnRate,
		Activation: step.Kind(mf.Activation),
		Cost:       cost.Kind(mf.Cost),
		SavePath:   mf.SavePath,
		StatEpoch:  mf.StatEpoch,
		StatError:  mf.StatError,
	}

	// Build a fresh (randomly initialized) network for its correctly
	// shaped scratch buffers, then overwrite weights/biases/
	// accumulators with the decoded state.
	n, err := New(hyper)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}

	n.weights = layer.FromSlice(mf.Weights)
	n.biases = layer.FromSlice(mf.Biases)
	n.accWErr = layer.FromSlice(mf.AccWErr)
	n.accErr = layer.FromSlice(mf.AccErr)
	n.accSamples = mf.AccSamples

	return n, nil
}
