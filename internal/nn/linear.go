package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected layer: y = x @ W.T + b.
//
// W has shape [out_features, in_features] and b has shape [out_features].
// Weights use Xavier/Glorot uniform initialization, biases start at zero.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter

	input *mat.Dense
}

// NewLinear creates a Linear layer. rng seeds the weight initialization.
func NewLinear(inFeatures, outFeatures int, bias bool, rng *rand.Rand) *Linear {
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", outFeatures, inFeatures),
	}
	xavierUniform(l.weight.Data, inFeatures, outFeatures, rng)

	if bias {
		l.bias = NewParameter("bias", outFeatures)
	}

	return l
}

// InFeatures returns the input width.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output width.
func (l *Linear) OutFeatures() int { return l.outFeatures }

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter { return l.weight }

// Bias returns the bias parameter, nil when the layer has none.
func (l *Linear) Bias() *Parameter { return l.bias }

// Forward computes x @ W.T + b for x of shape [batch, in_features].
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	batch, in := x.Dims()
	if in != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, in))
	}
	l.input = x

	out := mat.NewDense(batch, l.outFeatures, nil)
	out.Mul(x, l.weight.Matrix().T())

	if l.bias != nil {
		for i := range batch {
			floats.Add(out.RawRowView(i), l.bias.Data)
		}
	}

	return out
}

// Backward accumulates dW = g.T @ x and db = sum(g) and returns g @ W.
func (l *Linear) Backward(grad *mat.Dense) *mat.Dense {
	if l.input == nil {
		panic("Linear.Backward: called before Forward")
	}
	batch, _ := grad.Dims()

	var dW mat.Dense
	dW.Mul(grad.T(), l.input)
	gW := l.weight.GradMatrix()
	gW.Add(gW, &dW)

	if l.bias != nil {
		for i := range batch {
			floats.Add(l.bias.Grad, grad.RawRowView(i))
		}
	}

	dx := mat.NewDense(batch, l.inFeatures, nil)
	dx.Mul(grad, l.weight.Matrix())
	return dx
}

// Parameters returns [weight, bias], or [weight] without bias.
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}
