package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// elementwise is an activation applied per element, with its derivative
// expressed in terms of the input and the output.
type elementwise struct {
	f     func(x float64) float64
	df    func(x, y float64) float64
	input *mat.Dense
	out   *mat.Dense
}

func (e *elementwise) Forward(x *mat.Dense) *mat.Dense {
	e.input = x
	out := mat.DenseCopyOf(x)
	out.Apply(func(_, _ int, v float64) float64 { return e.f(v) }, x)
	e.out = out
	return out
}

func (e *elementwise) Backward(grad *mat.Dense) *mat.Dense {
	if e.input == nil {
		panic("nn: activation Backward called before Forward")
	}
	dx := mat.DenseCopyOf(grad)
	dx.Apply(func(i, j int, g float64) float64 {
		return g * e.df(e.input.At(i, j), e.out.At(i, j))
	}, grad)
	return dx
}

func (e *elementwise) Parameters() []*Parameter { return nil }

// ReLU is max(0, x).
type ReLU struct{ elementwise }

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{elementwise{
		f: func(x float64) float64 { return math.Max(0, x) },
		df: func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	}}
}

// Tanh is the hyperbolic tangent.
type Tanh struct{ elementwise }

// NewTanh creates a Tanh activation.
func NewTanh() *Tanh {
	return &Tanh{elementwise{
		f:  math.Tanh,
		df: func(_, y float64) float64 { return 1 - y*y },
	}}
}

// Sigmoid is 1 / (1 + exp(-x)).
type Sigmoid struct{ elementwise }

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{elementwise{
		f:  sigmoid,
		df: func(_, y float64) float64 { return y * (1 - y) },
	}}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
