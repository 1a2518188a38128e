package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sequential chains modules. Child parameter names are qualified with the
// child index, so the weight of the first layer is "0.weight".
type Sequential struct {
	layers []Module
	params []*Parameter
}

// NewSequential creates a Sequential from layers, renaming their parameters.
func NewSequential(layers ...Module) *Sequential {
	s := &Sequential{layers: layers}
	for i, layer := range layers {
		for _, p := range layer.Parameters() {
			p.Name = fmt.Sprintf("%d.%s", i, p.Name)
			s.params = append(s.params, p)
		}
	}
	return s
}

// Layers returns the child modules.
func (s *Sequential) Layers() []Module {
	return s.layers
}

func (s *Sequential) Forward(x *mat.Dense) *mat.Dense {
	for _, layer := range s.layers {
		x = layer.Forward(x)
	}
	return x
}

func (s *Sequential) Backward(grad *mat.Dense) *mat.Dense {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

func (s *Sequential) Parameters() []*Parameter {
	return s.params
}
