package polydisperse

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"sasfit/internal/model"
	"sasfit/internal/numutil"
)

var ErrEmptyGrid = errors.New("cutoff removed every quadrature point")

// ParamQuadrature describes one polydisperse parameter going into the
// combined grid. Sigma is the absolute width: width*|value| for size
// parameters, width as-is for orientation angles.
type ParamQuadrature struct {
	Name         string
	Center       float64
	Sigma        float64
	Lower, Upper float64
	Config       model.Polydispersity
}

// Grid is the Cartesian product of per-parameter quadratures. Each
// combo holds one value per name; the fixed (non-polydisperse)
// parameters are merged in by the evaluator. Weights are unnormalized;
// Total is the post-cutoff sum used for normalization.
type Grid struct {
	Names   []string
	Combos  [][]float64
	Weights []float64
	Total   float64
}

// Trivial is the zero-polydispersity grid: a single empty combination
// with weight 1.
func Trivial() Grid {
	return Grid{Combos: [][]float64{nil}, Weights: []float64{1}, Total: 1}
}

// Build combines per-parameter quadratures via full outer product,
// multiplying weights, then drops any combination whose weight falls
// below cutoff*max(weight). The cutoff is a performance/accuracy
// tradeoff, not a correctness requirement: a non-zero cutoff introduces
// a bias bounded by the dropped weight fraction, and cutoff=0 is the
// reference case.
func Build(params []ParamQuadrature, cutoff float64) (Grid, error) {
	if len(params) == 0 {
		return Trivial(), nil
	}

	names := make([]string, len(params))
	points := make([]Points, len(params))
	for i, p := range params {
		names[i] = p.Name
		pts, err := PointsFor(p.Config, p.Center, p.Sigma, p.Lower, p.Upper)
		if err != nil {
			return Grid{}, err
		}
		points[i] = pts
	}

	combos := [][]float64{nil}
	weights := []float64{1}
	for _, pts := range points {
		next := make([][]float64, 0, len(combos)*len(pts.Values))
		nextWeights := make([]float64, 0, len(weights)*len(pts.Weights))
		for c := range combos {
			for v := range pts.Values {
				combo := make([]float64, len(combos[c]), len(combos[c])+1)
				copy(combo, combos[c])
				next = append(next, append(combo, pts.Values[v]))
				nextWeights = append(nextWeights, weights[c]*pts.Weights[v])
			}
		}
		combos, weights = next, nextWeights
	}

	if cutoff > 0 {
		max := weights[numutil.Argmax(weights)]
		threshold := cutoff * max
		keptCombos := combos[:0]
		keptWeights := weights[:0]
		for i := range weights {
			if weights[i] >= threshold {
				keptCombos = append(keptCombos, combos[i])
				keptWeights = append(keptWeights, weights[i])
			}
		}
		combos, weights = keptCombos, keptWeights
	}

	total := floats.Sum(weights)
	if len(weights) == 0 || total <= 0 {
		return Grid{}, ErrEmptyGrid
	}
	return Grid{Names: names, Combos: combos, Weights: weights, Total: total}, nil
}

// Size returns the number of surviving combinations.
func (g Grid) Size() int {
	return len(g.Weights)
}
