// Package optim implements the optimizers shadow models are trained with.
//
// Optimizers are resolved by name from a fixed table and constructed over
// a model's parameters with keyword configuration, mirroring how training
// configs name them:
//
//	ctor, err := optim.Lookup("Adam")
//	opt, err := ctor(model.Parameters(), params.Params{"lr": 0.001})
//
//	model.Backward(grad)
//	opt.Step()
//	opt.ZeroGrad()
package optim

import (
	"errors"
	"fmt"
	"math"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
	"github.com/ekisa-team/shadowsmith/internal/registry"
)

// ErrInvalidConfig reports an out-of-range hyperparameter.
var ErrInvalidConfig = errors.New("invalid optimizer config")

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	// Name returns the registry name of the optimizer.
	Name() string

	// Step applies one update to every parameter.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// Parameters returns the parameters being optimized.
	Parameters() []*nn.Parameter
}

// Constructor builds an optimizer over params from keyword configuration.
type Constructor func(ps []*nn.Parameter, cfg params.Params) (Optimizer, error)

var optimizers = registry.New("optimizer", map[string]Constructor{
	"SGD":     newSGD,
	"Adam":    newAdam,
	"AdamW":   newAdamW,
	"RMSprop": newRMSprop,
})

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	return optimizers.Lookup(name)
}

// Names returns the registered optimizer names.
func Names() []string {
	return optimizers.Names()
}

// base holds what every optimizer shares.
type base struct {
	name   string
	params []*nn.Parameter
	lr     float64
}

func (b *base) Name() string                { return b.name }
func (b *base) LR() float64                 { return b.lr }
func (b *base) Parameters() []*nn.Parameter { return b.params }

func (b *base) ZeroGrad() {
	for _, p := range b.params {
		p.ZeroGrad()
	}
}

// state returns a zeroed per-parameter buffer, allocating on first use.
func state(buffers map[*nn.Parameter][]float64, p *nn.Parameter) []float64 {
	buf, ok := buffers[p]
	if !ok {
		buf = make([]float64, len(p.Data))
		buffers[p] = buf
	}
	return buf
}

func learningRate(cfg params.Params, def float64) (float64, error) {
	lr, err := params.Lookup(cfg, "lr", def)
	if err != nil {
		return 0, err
	}
	if !finite(lr) || lr < 0 {
		return 0, fmt.Errorf("%w: lr must be a finite value >= 0, got %v", ErrInvalidConfig, lr)
	}
	return lr, nil
}

func nonNegative(cfg params.Params, key string, def float64) (float64, error) {
	v, err := params.Lookup(cfg, key, def)
	if err != nil {
		return 0, err
	}
	if !finite(v) || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidConfig, key, v)
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
