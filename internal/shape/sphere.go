package shape

import (
	"math"

	"sasfit/internal/model"
)

// Sphere is the uniform-density sphere, the simplest closed-form kernel:
// F(q) = (sld - sld_solvent)*V * 3*(sin(qR) - qR*cos(qR))/(qR)^3.
// Isotropic, so 2D evaluation reduces to |q|.
type Sphere struct{}

func (Sphere) Info() Info {
	inf := math.Inf(1)
	return Info{
		Name:  "sphere",
		Title: "Spheres with uniform scattering length density.",
		Params: []ParamInfo{
			{Name: "sld", Unit: "1e-6/Ang^2", Default: 1, Lower: -inf, Upper: inf, Role: model.RoleSLD, Description: "Sphere scattering length density"},
			{Name: "sld_solvent", Unit: "1e-6/Ang^2", Default: 6, Lower: -inf, Upper: inf, Role: model.RoleSLD, Description: "Solvent scattering length density"},
			{Name: "radius", Unit: "Ang", Default: 50, Lower: 0, Upper: inf, Role: model.RoleVolume, Polydisperse: true, Description: "Sphere radius"},
		},
	}
}

func (s Sphere) Iq(q []float64, p map[string]float64) ([]float64, error) {
	a := newArgs(p)
	sld := a.get("sld")
	sldSolvent := a.get("sld_solvent")
	radius := a.get("radius")
	if err := a.err(); err != nil {
		return nil, err
	}

	contrastVolume := (sld - sldSolvent) * sphereVolume(radius)
	out := make([]float64, len(q))
	for i, qv := range q {
		amp := contrastVolume * sph3j(qv*radius)
		out[i] = sldToInverseCm * amp * amp
	}
	return out, nil
}

func (s Sphere) Iqxy(qx, qy []float64, p map[string]float64) ([]float64, error) {
	q := make([]float64, len(qx))
	for i := range qx {
		q[i] = math.Hypot(qx[i], qy[i])
	}
	return s.Iq(q, p)
}

func (Sphere) Volume(p map[string]float64) float64 {
	return sphereVolume(p["radius"])
}

func (Sphere) EffectiveRadius(p map[string]float64) float64 {
	return p["radius"]
}

func sphereVolume(radius float64) float64 {
	return 4 * math.Pi / 3 * radius * radius * radius
}
