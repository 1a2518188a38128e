// Package loss implements the criteria shadow models are trained and
// evaluated with, and the name-keyed table callers resolve them from.
package loss

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ekisa-team/shadowsmith/internal/params"
	"github.com/ekisa-team/shadowsmith/internal/registry"
)

// Error definitions for the loss package.
var (
	ErrShape         = errors.New("predictions and targets have incompatible shapes")
	ErrReduction     = errors.New("unsupported reduction")

	// ErrInvalidConfig reports a criterion parameter outside its valid range.
	ErrInvalidConfig = errors.New("invalid criterion configuration")
)

// Criterion computes a scalar loss and its gradient with respect to the predictions.
type Criterion interface {
	// Name returns the registry name of the criterion.
	Name() string

	// Forward returns the loss for pred against target and dL/dpred.
	Forward(pred, target *mat.Dense) (float64, *mat.Dense, error)
}

// Constructor builds a criterion from keyword parameters.
type Constructor func(cfg params.Params) (Criterion, error)

var criteria = registry.New("criterion", map[string]Constructor{
	"MSELoss":           newMSELoss,
	"L1Loss":            newL1Loss,
	"CrossEntropyLoss":  newCrossEntropyLoss,
	"BCEWithLogitsLoss": newBCEWithLogitsLoss,
})

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	return criteria.Lookup(name)
}

// Names returns the registered criterion names.
func Names() []string {
	return criteria.Names()
}

// New resolves name and builds the criterion from cfg.
func New(name string, cfg params.Params) (Criterion, error) {
	ctor, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return ctor(cfg)
}

// Reduction selects how per-element losses are combined.
type Reduction string

const (
	ReductionMean Reduction = "mean"
	ReductionSum  Reduction = "sum"
)

func reductionFrom(cfg params.Params) (Reduction, error) {
	s, err := params.Lookup(cfg, "reduction", string(ReductionMean))
	if err != nil {
		return "", err
	}

	switch r := Reduction(s); r {
	case ReductionMean, ReductionSum:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrReduction, s)
	}
}

// reduce returns the combined loss and the scale to apply to per-element gradients.
func (r Reduction) reduce(total float64, n int) (float64, float64) {
	if r == ReductionSum {
		return total, 1
	}
	return total / float64(n), 1 / float64(n)
}

func checkSameShape(pred, target *mat.Dense) error {
	pr, pc := pred.Dims()
	tr, tc := target.Dims()
	if pr != tr || pc != tc {
		return fmt.Errorf("%w: [%d %d] vs [%d %d]", ErrShape, pr, pc, tr, tc)
	}
	return nil
}
