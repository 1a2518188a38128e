package nn

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error definitions for state dict loading.
var (
	ErrMissingKey    = errors.New("missing key in state dict")
	ErrUnexpectedKey = errors.New("unexpected key in state dict")
	ErrShapeMismatch = errors.New("shape mismatch in state dict")
)

// Tensor is a named value in a state dict, detached from any module.
type Tensor struct {
	Shape []int
	Data  []float64
}

// StateDict returns a copy of every parameter of m keyed by name.
func StateDict(m Module) map[string]Tensor {
	state := make(map[string]Tensor)
	for _, p := range m.Parameters() {
		state[p.Name] = Tensor{
			Shape: slices.Clone(p.Shape),
			Data:  slices.Clone(p.Data),
		}
	}
	return state
}

// LoadStateDict copies state into the parameters of m in place. Names and
// shapes must match exactly; on error no parameter is modified.
func LoadStateDict(m Module, state map[string]Tensor) error {
	params := m.Parameters()

	seen := make(map[string]bool, len(params))
	for _, p := range params {
		seen[p.Name] = true

		t, ok := state[p.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingKey, p.Name)
		}
		if !sameShape(p.Shape, t.Shape) || len(t.Data) != len(p.Data) {
			return fmt.Errorf("%w: %s: model has %v, state has %v", ErrShapeMismatch, p.Name, p.Shape, t.Shape)
		}
	}

	var unexpected []string
	for name := range state {
		if !seen[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) > 0 {
		slices.Sort(unexpected)
		return fmt.Errorf("%w: %s", ErrUnexpectedKey, strings.Join(unexpected, ", "))
	}

	for _, p := range params {
		copy(p.Data, state[p.Name].Data)
	}

	return nil
}

// sameShape treats a scalar stored as [] and as [1] alike.
func sameShape(a, b []int) bool {
	if numElements(a) == 1 && numElements(b) == 1 {
		return true
	}
	return slices.Equal(a, b)
}
