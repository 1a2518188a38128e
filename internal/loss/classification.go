package loss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ekisa-team/shadowsmith/internal/params"
)

// CrossEntropyLoss applies log-softmax to logits of shape [batch, classes]
// and takes the negative log-likelihood of class-index targets of shape
// [batch, 1].
type CrossEntropyLoss struct {
	reduction      Reduction
	labelSmoothing float64
}

func newCrossEntropyLoss(cfg params.Params) (Criterion, error) {
	if err := params.CheckKeys(cfg, "reduction", "label_smoothing"); err != nil {
		return nil, err
	}
	r, err := reductionFrom(cfg)
	if err != nil {
		return nil, err
	}
	smoothing, err := params.Lookup(cfg, "label_smoothing", 0.0)
	if err != nil {
		return nil, err
	}
	if !(smoothing >= 0 && smoothing <= 1) {
		return nil, fmt.Errorf("%w: label_smoothing must be in [0, 1], got %v", ErrInvalidConfig, smoothing)
	}
	return &CrossEntropyLoss{reduction: r, labelSmoothing: smoothing}, nil
}

func (l *CrossEntropyLoss) Name() string { return "CrossEntropyLoss" }

func (l *CrossEntropyLoss) Forward(logits, target *mat.Dense) (float64, *mat.Dense, error) {
	batch, classes := logits.Dims()
	tr, tc := target.Dims()
	if tr != batch || tc != 1 {
		return 0, nil, fmt.Errorf("%w: logits [%d %d] need class-index targets [%d 1], got [%d %d]",
			ErrShape, batch, classes, batch, tr, tc)
	}

	grad := mat.NewDense(batch, classes, nil)
	off := l.labelSmoothing / float64(classes)
	on := 1 - l.labelSmoothing + off

	var total float64
	for i := range batch {
		class := int(target.At(i, 0))
		if class < 0 || class >= classes || float64(class) != target.At(i, 0) {
			return 0, nil, fmt.Errorf("%w: target %v at row %d is not a class index below %d",
				ErrShape, target.At(i, 0), i, classes)
		}

		row := logits.RawRowView(i)
		logSumExp := floats.LogSumExp(row)
		g := grad.RawRowView(i)
		for j, z := range row {
			want := off
			if j == class {
				want = on
			}
			total -= want * (z - logSumExp)
			g[j] = math.Exp(z-logSumExp) - want
		}
	}

	value, scale := l.reduction.reduce(total, batch)
	grad.Scale(scale, grad)
	return value, grad, nil
}

// BCEWithLogitsLoss is binary cross entropy on raw logits, computed in the
// numerically stable form max(z,0) - z*y + log(1 + exp(-|z|)).
type BCEWithLogitsLoss struct {
	reduction Reduction
	posWeight float64
}

func newBCEWithLogitsLoss(cfg params.Params) (Criterion, error) {
	if err := params.CheckKeys(cfg, "reduction", "pos_weight"); err != nil {
		return nil, err
	}
	r, err := reductionFrom(cfg)
	if err != nil {
		return nil, err
	}
	posWeight, err := params.Lookup(cfg, "pos_weight", 1.0)
	if err != nil {
		return nil, err
	}
	if !(posWeight > 0) || math.IsInf(posWeight, 0) {
		return nil, fmt.Errorf("%w: pos_weight must be positive and finite, got %v", ErrInvalidConfig, posWeight)
	}
	return &BCEWithLogitsLoss{reduction: r, posWeight: posWeight}, nil
}

func (l *BCEWithLogitsLoss) Name() string { return "BCEWithLogitsLoss" }

func (l *BCEWithLogitsLoss) Forward(logits, target *mat.Dense) (float64, *mat.Dense, error) {
	if err := checkSameShape(logits, target); err != nil {
		return 0, nil, err
	}

	r, c := logits.Dims()
	grad := mat.NewDense(r, c, nil)

	var total float64
	for i := range r {
		for j := range c {
			z, y := logits.At(i, j), target.At(i, j)
			// log(sigmoid(z)) and log(1 - sigmoid(z)) without overflow.
			logSig := -softplus(-z)
			logOneMinus := -softplus(z)
			total -= l.posWeight*y*logSig + (1-y)*logOneMinus

			s := 1 / (1 + math.Exp(-z))
			grad.Set(i, j, (l.posWeight*y+1-y)*s-l.posWeight*y)
		}
	}

	value, scale := l.reduction.reduce(total, r*c)
	grad.Scale(scale, grad)
	return value, grad, nil
}

func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}
