package blueprint

import (
	"fmt"
	"math/rand/v2"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
	"github.com/ekisa-team/shadowsmith/internal/registry"
)

// Factory builds a model from keyword init params.
type Factory func(p params.Params) (nn.Module, error)

var factories = registry.New("model factory", map[string]Factory{
	"linear":   newLinear,
	"mlp":      newMLP,
	"logistic": newLogistic,
})

// LookupFactory returns the factory registered under name.
func LookupFactory(name string) (Factory, error) {
	return factories.Lookup(name)
}

// FactoryNames returns the registered factory names.
func FactoryNames() []string {
	return factories.Names()
}

var activations = map[string]func() nn.Module{
	"relu":    func() nn.Module { return nn.NewReLU() },
	"tanh":    func() nn.Module { return nn.NewTanh() },
	"sigmoid": func() nn.Module { return nn.NewSigmoid() },
}

func newLinear(p params.Params) (nn.Module, error) {
	if err := params.CheckKeys(p, "in_features", "out_features", "bias", "seed"); err != nil {
		return nil, err
	}
	in, out, err := dims(p)
	if err != nil {
		return nil, err
	}
	bias, err := params.Lookup(p, "bias", true)
	if err != nil {
		return nil, err
	}
	rng, err := seeded(p)
	if err != nil {
		return nil, err
	}

	return nn.NewLinear(in, out, bias, rng), nil
}

func newMLP(p params.Params) (nn.Module, error) {
	if err := params.CheckKeys(p, "in_features", "hidden", "out_features", "activation", "bias", "seed"); err != nil {
		return nil, err
	}
	in, out, err := dims(p)
	if err != nil {
		return nil, err
	}
	hidden, err := params.Lookup(p, "hidden", []int{})
	if err != nil {
		return nil, err
	}
	name, err := params.Lookup(p, "activation", "relu")
	if err != nil {
		return nil, err
	}
	activation, ok := activations[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown activation %q", ErrInvalidParams, name)
	}
	bias, err := params.Lookup(p, "bias", true)
	if err != nil {
		return nil, err
	}
	rng, err := seeded(p)
	if err != nil {
		return nil, err
	}

	var layers []nn.Module
	width := in
	for _, h := range hidden {
		if h <= 0 {
			return nil, fmt.Errorf("%w: hidden sizes must be positive, got %v", ErrInvalidParams, hidden)
		}
		layers = append(layers, nn.NewLinear(width, h, bias, rng), activation())
		width = h
	}
	layers = append(layers, nn.NewLinear(width, out, bias, rng))

	return nn.NewSequential(layers...), nil
}

func newLogistic(p params.Params) (nn.Module, error) {
	if err := params.CheckKeys(p, "in_features", "out_features", "seed"); err != nil {
		return nil, err
	}
	in, out, err := dims(p)
	if err != nil {
		return nil, err
	}
	rng, err := seeded(p)
	if err != nil {
		return nil, err
	}

	return nn.NewSequential(nn.NewLinear(in, out, true, rng), nn.NewSigmoid()), nil
}

func dims(p params.Params) (int, int, error) {
	in, err := params.Lookup(p, "in_features", 0)
	if err != nil {
		return 0, 0, err
	}
	out, err := params.Lookup(p, "out_features", 0)
	if err != nil {
		return 0, 0, err
	}
	if in <= 0 || out <= 0 {
		return 0, 0, fmt.Errorf("%w: in_features and out_features must be positive, got %d and %d", ErrInvalidParams, in, out)
	}
	return in, out, nil
}

// seeded returns the init source: deterministic when a seed is given,
// fresh per model otherwise.
func seeded(p params.Params) (*rand.Rand, error) {
	if _, ok := p["seed"]; !ok {
		return nn.NewRand(rand.Uint64()), nil
	}
	seed, err := params.Lookup(p, "seed", 0)
	if err != nil {
		return nil, err
	}
	return nn.NewRand(uint64(seed)), nil
}
