package optim

import (
	"fmt"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule with momentum μ, dampening τ and weight decay λ:
//
//	g = grad + λ·param
//	v = μ·v + (1-τ)·g
//	param -= lr · (g + μ·v  if nesterov, else v)
type SGD struct {
	base
	momentum    float64
	dampening   float64
	weightDecay float64
	nesterov    bool
	velocities  map[*nn.Parameter][]float64
}

func newSGD(ps []*nn.Parameter, cfg params.Params) (Optimizer, error) {
	if err := params.CheckKeys(cfg, "lr", "momentum", "dampening", "weight_decay", "nesterov"); err != nil {
		return nil, err
	}

	lr, err := learningRate(cfg, 0.01)
	if err != nil {
		return nil, err
	}
	momentum, err := nonNegative(cfg, "momentum", 0)
	if err != nil {
		return nil, err
	}
	dampening, err := params.Lookup(cfg, "dampening", 0.0)
	if err != nil {
		return nil, err
	}
	if !finite(dampening) {
		return nil, fmt.Errorf("%w: dampening must be finite, got %v", ErrInvalidConfig, dampening)
	}
	weightDecay, err := nonNegative(cfg, "weight_decay", 0)
	if err != nil {
		return nil, err
	}
	nesterov, err := params.Lookup(cfg, "nesterov", false)
	if err != nil {
		return nil, err
	}
	if nesterov && (momentum == 0 || dampening != 0) {
		return nil, fmt.Errorf("%w: nesterov requires momentum and zero dampening", ErrInvalidConfig)
	}

	return &SGD{
		base:        base{name: "SGD", params: ps, lr: lr},
		momentum:    momentum,
		dampening:   dampening,
		weightDecay: weightDecay,
		nesterov:    nesterov,
		velocities:  make(map[*nn.Parameter][]float64),
	}, nil
}

func (s *SGD) Step() {
	for _, p := range s.params {
		var v []float64
		if s.momentum != 0 {
			v = state(s.velocities, p)
		}

		for i, grad := range p.Grad {
			g := grad + s.weightDecay*p.Data[i]
			if v != nil {
				v[i] = s.momentum*v[i] + (1-s.dampening)*g
				if s.nesterov {
					g += s.momentum * v[i]
				} else {
					g = v[i]
				}
			}
			p.Data[i] -= s.lr * g
		}
	}
}
