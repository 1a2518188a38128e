package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
)

// Adam implements Adaptive Moment Estimation. With decoupled set it is
// AdamW: weight decay shrinks the parameters directly instead of being
// folded into the gradient.
type Adam struct {
	base
	beta1       float64
	beta2       float64
	eps         float64
	weightDecay float64
	decoupled   bool
	t           int
	m           map[*nn.Parameter][]float64
	v           map[*nn.Parameter][]float64
}

func newAdam(ps []*nn.Parameter, cfg params.Params) (Optimizer, error) {
	return buildAdam("Adam", ps, cfg, 0, false)
}

func newAdamW(ps []*nn.Parameter, cfg params.Params) (Optimizer, error) {
	return buildAdam("AdamW", ps, cfg, 0.01, true)
}

func buildAdam(name string, ps []*nn.Parameter, cfg params.Params, defaultDecay float64, decoupled bool) (Optimizer, error) {
	if err := params.CheckKeys(cfg, "lr", "betas", "eps", "weight_decay"); err != nil {
		return nil, err
	}

	lr, err := learningRate(cfg, 0.001)
	if err != nil {
		return nil, err
	}
	betas, err := params.Lookup(cfg, "betas", []float64{0.9, 0.999})
	if err != nil {
		return nil, err
	}
	if len(betas) != 2 {
		return nil, fmt.Errorf("%w: betas needs 2 values, got %d", ErrInvalidConfig, len(betas))
	}
	for _, b := range betas {
		if !(b >= 0 && b < 1) {
			return nil, fmt.Errorf("%w: betas must be in [0, 1), got %v", ErrInvalidConfig, betas)
		}
	}
	eps, err := nonNegative(cfg, "eps", 1e-8)
	if err != nil {
		return nil, err
	}
	weightDecay, err := nonNegative(cfg, "weight_decay", defaultDecay)
	if err != nil {
		return nil, err
	}

	return &Adam{
		base:        base{name: name, params: ps, lr: lr},
		beta1:       betas[0],
		beta2:       betas[1],
		eps:         eps,
		weightDecay: weightDecay,
		decoupled:   decoupled,
		m:           make(map[*nn.Parameter][]float64),
		v:           make(map[*nn.Parameter][]float64),
	}, nil
}

func (a *Adam) Step() {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, p := range a.params {
		m := state(a.m, p)
		v := state(a.v, p)

		if a.decoupled {
			floats.Scale(1-a.lr*a.weightDecay, p.Data)
		}

		for i, g := range p.Grad {
			if !a.decoupled {
				g += a.weightDecay * p.Data[i]
			}

			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g

			p.Data[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
		}
	}
}
