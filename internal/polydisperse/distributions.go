package polydisperse

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"sasfit/internal/model"
)

var (
	ErrUnknownDistribution = errors.New("unknown polydispersity distribution")
	ErrBadArrayWeights     = errors.New("array distribution values/weights length mismatch")
)

// defaultNSigma bounds the quadrature span when the configuration does
// not say otherwise.
const defaultNSigma = 3

// Points is the quadrature for a single parameter: abscissas and
// unnormalized weights. Normalization happens once on the combined grid.
type Points struct {
	Values  []float64
	Weights []float64
}

func singlePoint(center float64) Points {
	return Points{Values: []float64{center}, Weights: []float64{1}}
}

// PointsFor builds the quadrature for one polydisperse parameter.
// center is the current parameter value, sigma the resolved absolute
// distribution width, and lower/upper the parameter's declared bounds.
// A trivial configuration collapses to a single point with weight 1.
func PointsFor(pd model.Polydispersity, center, sigma, lower, upper float64) (Points, error) {
	if pd.Type == model.DistArray {
		if len(pd.Values) == 0 {
			return singlePoint(center), nil
		}
		if len(pd.Values) != len(pd.Weights) {
			return Points{}, fmt.Errorf("%w: %d values, %d weights", ErrBadArrayWeights, len(pd.Values), len(pd.Weights))
		}
		return Points{
			Values:  append([]float64(nil), pd.Values...),
			Weights: append([]float64(nil), pd.Weights...),
		}, nil
	}

	if pd.Trivial() || sigma <= 0 {
		return singlePoint(center), nil
	}

	nsigma := pd.NSigma
	if nsigma <= 0 {
		nsigma = defaultNSigma
	}
	left := math.Max(center-nsigma*sigma, lower)
	right := math.Min(center+nsigma*sigma, upper)
	if !(left < right) {
		return singlePoint(center), nil
	}
	if pd.NPoints == 1 {
		return singlePoint(center), nil
	}

	density, err := densityFor(pd.Type, center, sigma, left, right)
	if err != nil {
		return Points{}, err
	}

	values := make([]float64, pd.NPoints)
	floats.Span(values, left, right)
	weights := make([]float64, pd.NPoints)
	for i, v := range values {
		weights[i] = density(v)
	}
	return Points{Values: values, Weights: weights}, nil
}

func densityFor(kind model.DistributionType, center, sigma, left, right float64) (func(float64) float64, error) {
	switch kind {
	case model.DistGaussian, "":
		return distuv.Normal{Mu: center, Sigma: sigma}.Prob, nil
	case model.DistRectangular:
		return distuv.Uniform{Min: left, Max: right}.Prob, nil
	case model.DistLogNormal:
		if center <= 0 {
			return nil, fmt.Errorf("%w: lognormal requires a positive center, got %g", ErrUnknownDistribution, center)
		}
		rel := sigma / center
		return distuv.LogNormal{Mu: math.Log(center), Sigma: rel}.Prob, nil
	case model.DistSchulz:
		if center <= 0 {
			return nil, fmt.Errorf("%w: schulz requires a positive center, got %g", ErrUnknownDistribution, center)
		}
		// Schulz with mean R and polydispersity p = sigma/R is the
		// Gamma distribution with shape 1/p^2 and matching mean.
		rel := sigma / center
		shape := 1 / (rel * rel)
		return distuv.Gamma{Alpha: shape, Beta: shape / center}.Prob, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDistribution, kind)
	}
}
