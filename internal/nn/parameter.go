package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Parameter is a trainable tensor owned by a module.
type Parameter struct {
	Name  string
	Shape []int
	Data  []float64
	Grad  []float64
}

// NewParameter creates a zero-filled parameter of the given shape.
func NewParameter(name string, shape ...int) *Parameter {
	n := numElements(shape)
	return &Parameter{
		Name:  name,
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, n),
		Grad:  make([]float64, n),
	}
}

// NumElements returns the number of scalars held by the parameter.
func (p *Parameter) NumElements() int {
	return len(p.Data)
}

// Matrix views a 2-D parameter as a dense matrix sharing its storage.
func (p *Parameter) Matrix() *mat.Dense {
	if len(p.Shape) != 2 {
		panic(fmt.Sprintf("nn: parameter %s has shape %v, not 2-D", p.Name, p.Shape))
	}
	return mat.NewDense(p.Shape[0], p.Shape[1], p.Data)
}

// GradMatrix views the gradient of a 2-D parameter as a dense matrix.
func (p *Parameter) GradMatrix() *mat.Dense {
	if len(p.Shape) != 2 {
		panic(fmt.Sprintf("nn: parameter %s has shape %v, not 2-D", p.Name, p.Shape))
	}
	return mat.NewDense(p.Shape[0], p.Shape[1], p.Grad)
}

// ZeroGrad clears the accumulated gradient.
func (p *Parameter) ZeroGrad() {
	clear(p.Grad)
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
