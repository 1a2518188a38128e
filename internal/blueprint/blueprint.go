// Package blueprint turns model definitions into constructible blueprints.
//
// A blueprint pairs a Go factory, registered under a short name at process
// start, with default init params. Blueprints are declared in YAML manifests
// and looked up by class name:
//
//	version: "1"
//	blueprints:
//	  TargetNet:
//	    factory: mlp
//	    params: {in_features: 16, hidden: [32], out_features: 4}
package blueprint

import (
	"fmt"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
)

// Blueprint constructs models of one architecture.
type Blueprint struct {
	// Name is the class name the blueprint was declared under.
	Name string

	// Factory is the registered factory name.
	Factory string

	// Source is the manifest path, empty for blueprints registered in code.
	Source string

	// Defaults are init params the caller's params are merged over.
	Defaults params.Params

	build Factory
}

// New creates a blueprint for a registered factory.
func New(name, factory string, defaults params.Params) (*Blueprint, error) {
	f, err := LookupFactory(factory)
	if err != nil {
		return nil, err
	}

	return &Blueprint{
		Name:     name,
		Factory:  factory,
		Defaults: defaults.Clone(),
		build:    f,
	}, nil
}

// FromFunc wraps an arbitrary constructor as a blueprint.
func FromFunc(name string, f Factory) *Blueprint {
	return &Blueprint{Name: name, Factory: name, Defaults: params.Params{}, build: f}
}

// Build constructs a fresh model from the defaults overlaid by initParams.
func (b *Blueprint) Build(initParams params.Params) (nn.Module, error) {
	m, err := b.build(params.Merge(b.Defaults, initParams))
	if err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", b.Name, err)
	}
	return m, nil
}

// String returns the class name and factory.
func (b *Blueprint) String() string {
	return fmt.Sprintf("%s(%s)", b.Name, b.Factory)
}
