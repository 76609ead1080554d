package shape

import (
	"math"

	"sasfit/internal/model"
)

// GaussianPeak is a shape-independent Gaussian peak on a flat
// background: I(q) = scale * exp(-(q - peak_pos)^2 / (2 sigma^2)) +
// background. It declares a unit volume, so no volume normalization is
// applied.
type GaussianPeak struct{}

func (GaussianPeak) Info() Info {
	inf := math.Inf(1)
	return Info{
		Name:  "gaussian_peak",
		Title: "Gaussian shaped peak",
		Params: []ParamInfo{
			{Name: "peak_pos", Unit: "1/Ang", Default: 0.05, Lower: -inf, Upper: inf, Role: model.RoleOther, Description: "Peak position"},
			{Name: "sigma", Unit: "1/Ang", Default: 0.005, Lower: 0, Upper: inf, Role: model.RoleOther, Polydisperse: true, Description: "Peak width (standard deviation)"},
		},
	}
}

func (GaussianPeak) Iq(q []float64, p map[string]float64) ([]float64, error) {
	a := newArgs(p)
	peakPos := a.get("peak_pos")
	sigma := a.get("sigma")
	if err := a.err(); err != nil {
		return nil, err
	}

	out := make([]float64, len(q))
	for i, qv := range q {
		scaled := (qv - peakPos) / sigma
		out[i] = math.Exp(-0.5 * scaled * scaled)
	}
	return out, nil
}

func (g GaussianPeak) Iqxy(qx, qy []float64, p map[string]float64) ([]float64, error) {
	q := make([]float64, len(qx))
	for i := range qx {
		q[i] = math.Hypot(qx[i], qy[i])
	}
	return g.Iq(q, p)
}

func (GaussianPeak) Volume(map[string]float64) float64 {
	return 1
}

func (GaussianPeak) EffectiveRadius(map[string]float64) float64 {
	return 0
}
