package optim

import (
	"math"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
)

// RMSprop divides the gradient by a running average of its magnitude.
type RMSprop struct {
	base
	alpha       float64
	eps         float64
	momentum    float64
	weightDecay float64
	squares     map[*nn.Parameter][]float64
	buffers     map[*nn.Parameter][]float64
}

func newRMSprop(ps []*nn.Parameter, cfg params.Params) (Optimizer, error) {
	if err := params.CheckKeys(cfg, "lr", "alpha", "eps", "momentum", "weight_decay"); err != nil {
		return nil, err
	}

	lr, err := learningRate(cfg, 0.01)
	if err != nil {
		return nil, err
	}
	alpha, err := nonNegative(cfg, "alpha", 0.99)
	if err != nil {
		return nil, err
	}
	eps, err := nonNegative(cfg, "eps", 1e-8)
	if err != nil {
		return nil, err
	}
	momentum, err := nonNegative(cfg, "momentum", 0)
	if err != nil {
		return nil, err
	}
	weightDecay, err := nonNegative(cfg, "weight_decay", 0)
	if err != nil {
		return nil, err
	}

	return &RMSprop{
		base:        base{name: "RMSprop", params: ps, lr: lr},
		alpha:       alpha,
		eps:         eps,
		momentum:    momentum,
		weightDecay: weightDecay,
		squares:     make(map[*nn.Parameter][]float64),
		buffers:     make(map[*nn.Parameter][]float64),
	}, nil
}

func (r *RMSprop) Step() {
	for _, p := range r.params {
		sq := state(r.squares, p)
		var buf []float64
		if r.momentum > 0 {
			buf = state(r.buffers, p)
		}

		for i, g := range p.Grad {
			g += r.weightDecay * p.Data[i]
			sq[i] = r.alpha*sq[i] + (1-r.alpha)*g*g
			step := g / (math.Sqrt(sq[i]) + r.eps)

			if buf != nil {
				buf[i] = r.momentum*buf[i] + step
				step = buf[i]
			}
			p.Data[i] -= r.lr * step
		}
	}
}
