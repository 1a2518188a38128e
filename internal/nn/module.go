package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Module is a differentiable building block of a model.
type Module interface {
	// Forward computes the output for a [batch, features] input and caches
	// what Backward needs.
	Forward(x *mat.Dense) *mat.Dense

	// Backward takes dL/dout for the last Forward call, accumulates
	// parameter gradients and returns dL/dx.
	Backward(grad *mat.Dense) *mat.Dense

	// Parameters returns the trainable parameters, in a stable order.
	Parameters() []*Parameter
}

// ZeroGrad clears the gradients of every parameter of m.
func ZeroGrad(m Module) {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}

// CountParameters returns the number of scalars held by m.
func CountParameters(m Module) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.NumElements()
	}
	return n
}
