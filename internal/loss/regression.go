package loss

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ekisa-team/shadowsmith/internal/params"
)

// MSELoss is mean((pred - target)²).
type MSELoss struct {
	reduction Reduction
}

func newMSELoss(cfg params.Params) (Criterion, error) {
	if err := params.CheckKeys(cfg, "reduction"); err != nil {
		return nil, err
	}
	r, err := reductionFrom(cfg)
	if err != nil {
		return nil, err
	}
	return &MSELoss{reduction: r}, nil
}

func (l *MSELoss) Name() string { return "MSELoss" }

func (l *MSELoss) Forward(pred, target *mat.Dense) (float64, *mat.Dense, error) {
	if err := checkSameShape(pred, target); err != nil {
		return 0, nil, err
	}

	var diff mat.Dense
	diff.Sub(pred, target)

	r, c := diff.Dims()
	total := mat.Sum(mulElem(&diff, &diff))
	value, scale := l.reduction.reduce(total, r*c)

	grad := mat.DenseCopyOf(&diff)
	grad.Scale(2*scale, grad)
	return value, grad, nil
}

// L1Loss is mean(|pred - target|).
type L1Loss struct {
	reduction Reduction
}

func newL1Loss(cfg params.Params) (Criterion, error) {
	if err := params.CheckKeys(cfg, "reduction"); err != nil {
		return nil, err
	}
	r, err := reductionFrom(cfg)
	if err != nil {
		return nil, err
	}
	return &L1Loss{reduction: r}, nil
}

func (l *L1Loss) Name() string { return "L1Loss" }

func (l *L1Loss) Forward(pred, target *mat.Dense) (float64, *mat.Dense, error) {
	if err := checkSameShape(pred, target); err != nil {
		return 0, nil, err
	}

	var diff mat.Dense
	diff.Sub(pred, target)

	r, c := diff.Dims()
	var total float64
	for _, v := range diff.RawMatrix().Data {
		total += math.Abs(v)
	}
	value, scale := l.reduction.reduce(total, r*c)

	grad := mat.NewDense(r, c, nil)
	grad.Apply(func(i, j int, _ float64) float64 {
		d := diff.At(i, j)
		switch {
		case d > 0:
			return scale
		case d < 0:
			return -scale
		}
		return 0
	}, grad)
	return value, grad, nil
}

func mulElem(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}
