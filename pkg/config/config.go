// Package config implements the hyperparameter builder: named,
// defaulted configuration for a network's architecture, training
// schedule, and I/O settings, constructible directly in code or from
// a YAML manifest on disk.
package config

import (
	"fmt"
	"os"

	"github.com/MattanMohel/net-rs/pkg/cost"
	"github.com/MattanMohel/net-rs/pkg/step"
	"gopkg.in/yaml.v3"
)

// supportedActivations and supportedCosts restrict which named
// activation and cost kinds a manifest may request, mirroring the teacher's supported-map
// validation pattern.
var supportedActivations = map[string]step.Kind{
	"sigmoid": step.Sigmoid,
	"tanh":    step.Tanh,
	"linear":  step.Linear,
}

var supportedCosts = map[string]cost.Kind{
	"quadratic": cost.Quadratic,
}

// Hyperparameters is the fully resolved, immutable configuration a
// Network is built from.
type Hyperparameters struct {
	Form       []int
	BatchSize  int
	LearnRate  float64
	Activation step.Kind
	Cost       cost.Kind
	SavePath   string
	StatEpoch  bool
	StatError  bool
}

// Builder accumulates named options before Build() resolves them into
// Hyperparameters. Build does not construct a Network; network.New or
// network.NewSeeded builds one from the result. The Builder is
// independent from the engine object: the same Builder can seed
// multiple networks.
type Builder struct {
	h Hyperparameters
}

// NewBuilder starts a Builder for the given layer-widths form, with
// every other option at its documented default.
func NewBuilder(form []int) *Builder {
	return &Builder{h: Hyperparameters{
		Form:       append([]int(nil), form...),
		BatchSize:  32,
		LearnRate:  0.01,
		Activation: step.Sigmoid,
		Cost:       cost.Quadratic,
		SavePath:   "",
		StatEpoch:  false,
		StatError:  false,
	}}
}

func (b *Builder) BatchSize(n int) *Builder { b.h.BatchSize = n; return b }
func (b *Builder) LearnRate(r float64) *Builder { b.h.LearnRate = r; return b }
func (b *Builder) Activation(k step.Kind) *Builder { b.h.Activation = k; return b }
func (b *Builder) Cost(k cost.Kind) *Builder { b.h.Cost = k; return b }
func (b *Builder) SavePath(path string) *Builder { b.h.SavePath = path; return b }
func (b *Builder) StatEpoch(on bool) *Builder { b.h.StatEpoch = on; return b }
func (b *Builder) StatError(on bool) *Builder { b.h.StatError = on; return b }

// Build validates the activation and cost kinds and returns the
// resolved Hyperparameters. It does not check the form's depth;
// network.New is the authority on InvalidDepth and also re-checks the
// activation/cost kinds.
func (b *Builder) Build() (Hyperparameters, error) {
	if _, ok := supportedActivations[string(b.h.Activation)]; !ok {
		return Hyperparameters{}, fmt.Errorf("config: unsupported activation %q", b.h.Activation)
	}
	if _, ok := supportedCosts[string(b.h.Cost)]; !ok {
		return Hyperparameters{}, fmt.Errorf("config: unsupported cost %q", b.h.Cost)
	}
	return b.h, nil
}

// Manifest is the YAML-decoded shape of an on-disk hyperparameter
// file, generalizing the teacher's Layers/Training/Optimize manifest
// to this engine's flatter option set.
type Manifest struct {
	Form       []int   `yaml:"form"`
	BatchSize  int     `yaml:"batch_size,omitempty"`
	LearnRate  float64 `yaml:"learn_rate,omitempty"`
	Activation string  `yaml:"activation,omitempty"`
	Cost       string  `yaml:"cost,omitempty"`
	SavePath   string  `yaml:"save_path,omitempty"`
	StatEpoch  bool    `yaml:"stat_epoch,omitempty"`
	StatError  bool    `yaml:"stat_error,omitempty"`
}

// FromManifest reads a YAML manifest from path and returns a Builder
// seeded from it, falling back to the documented defaults for any
// field the manifest omits.
func FromManifest(path string) (*Builder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: could not read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: could not decode manifest: %w", err)
	}
	return ParseManifest(&m)
}

// ParseManifest builds a Builder from an already-decoded Manifest,
// validating the named activation/cost kinds against the supported
// set before handing back a Builder the caller can still override.
func ParseManifest(m *Manifest) (*Builder, error) {
	if len(m.Form) == 0 {
		return nil, fmt.Errorf("config: manifest must specify form")
	}
	b := NewBuilder(m.Form)

	if m.Activation != "" {
		act, ok := supportedActivations[m.Activation]
		if !ok {
			return nil, fmt.Errorf("config: unsupported activation %q", m.Activation)
		}
		b.Activation(act)
	}
	if m.Cost != "" {
		c, ok := supportedCosts[m.Cost]
		if !ok {
			return nil, fmt.Errorf("config: unsupported cost %q", m.Cost)
		}
		b.Cost(c)
	}
	if m.BatchSize > 0 {
		b.BatchSize(m.BatchSize)
	}
	if m.LearnRate > 0 {
		b.LearnRate(m.LearnRate)
	}
	if m.SavePath != "" {
		b.SavePath(m.SavePath)
	}
	b.StatEpoch(m.StatEpoch)
	b.StatError(m.StatError)

	return b, nil
}
