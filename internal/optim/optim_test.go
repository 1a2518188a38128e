package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/shadowsmith/internal/nn"
	"github.com/ekisa-team/shadowsmith/internal/params"
	"github.com/ekisa-team/shadowsmith/internal/registry"
)

func newParam(data, grad []float64) *nn.Parameter {
	p := nn.NewParameter("w", len(data))
	copy(p.Data, data)
	copy(p.Grad, grad)
	return p
}

func build(t *testing.T, name string, ps []*nn.Parameter, cfg params.Params) Optimizer {
	t.Helper()
	ctor, err := Lookup(name)
	require.NoError(t, err)
	opt, err := ctor(ps, cfg)
	require.NoError(t, err)
	return opt
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"Adam", "AdamW", "RMSprop", "SGD"}, Names())

	_, err := Lookup("NoSuchOptimizer")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Contains(t, err.Error(), "NoSuchOptimizer")
}

func TestSGD_Step(t *testing.T) {
	p := newParam([]float64{1, 2}, []float64{0.5, -1})
	opt := build(t, "SGD", []*nn.Parameter{p}, params.Params{"lr": 0.1})

	opt.Step()
	assert.InDeltaSlice(t, []float64{0.95, 2.1}, p.Data, 1e-12)
	assert.Equal(t, "SGD", opt.Name())
	assert.Equal(t, 0.1, opt.LR())

	opt.ZeroGrad()
	assert.Equal(t, []float64{0, 0}, p.Grad)
}

func TestSGD_Momentum(t *testing.T) {
	p := newParam([]float64{0}, []float64{1})
	opt := build(t, "SGD", []*nn.Parameter{p}, params.Params{"lr": 1, "momentum": 0.5})

	opt.Step() // v = 1
	opt.Step() // v = 1.5
	assert.InDelta(t, -2.5, p.Data[0], 1e-12)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	p := newParam([]float64{1, 1}, []float64{3, -0.2})
	opt := build(t, "Adam", []*nn.Parameter{p}, params.Params{"lr": 0.01})

	opt.Step()
	assert.InDelta(t, 0.99, p.Data[0], 1e-6)
	assert.InDelta(t, 1.01, p.Data[1], 1e-6)
	assert.Same(t, p, opt.Parameters()[0])
}

func TestAdamW_DecouplesWeightDecay(t *testing.T) {
	p := newParam([]float64{2}, []float64{0})
	opt := build(t, "AdamW", []*nn.Parameter{p}, params.Params{"lr": 0.1, "weight_decay": 0.5})

	opt.Step()
	assert.InDelta(t, 2*(1-0.05), p.Data[0], 1e-12)
}

func TestRMSprop_Step(t *testing.T) {
	p := newParam([]float64{0}, []float64{2})
	opt := build(t, "RMSprop", []*nn.Parameter{p}, params.Params{"lr": 0.1, "alpha": 0.0, "eps": 0.0})

	opt.Step()
	assert.InDelta(t, -0.1, p.Data[0], 1e-12)
	assert.False(t, math.IsNaN(p.Data[0]))
}

func TestConstructorsRejectBadConfig(t *testing.T) {
	ps := []*nn.Parameter{newParam([]float64{0}, []float64{0})}

	tests := []struct {
		name string
		cfg  params.Params
		err  error
	}{
		{"SGD", params.Params{"learning_rate": 0.1}, params.ErrUnknownKey},
		{"SGD", params.Params{"lr": -1}, ErrInvalidConfig},
		{"SGD", params.Params{"lr": math.NaN()}, ErrInvalidConfig},
		{"Adam", params.Params{"lr": math.Inf(1)}, ErrInvalidConfig},
		{"Adam", params.Params{"betas": []any{math.NaN(), 0.999}}, ErrInvalidConfig},
		{"RMSprop", params.Params{"eps": math.NaN()}, ErrInvalidConfig},
		{"SGD", params.Params{"lr": "fast"}, params.ErrWrongType},
		{"SGD", params.Params{"nesterov": true}, ErrInvalidConfig},
		{"Adam", params.Params{"betas": []any{0.9}}, ErrInvalidConfig},
		{"Adam", params.Params{"betas": []any{0.9, 1.0}}, ErrInvalidConfig},
		{"RMSprop", params.Params{"momentum": -0.1}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		ctor, err := Lookup(tt.name)
		require.NoError(t, err)

		_, err = ctor(ps, tt.cfg)
		assert.ErrorIs(t, err, tt.err, "%s %v", tt.name, tt.cfg)
	}
}
