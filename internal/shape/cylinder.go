package shape

import (
	"math"

	"sasfit/internal/model"
	"sasfit/internal/numutil"
)

// Cylinder is the right circular cylinder with uniform scattering
// length density.
//
//	F(q,alpha) = 2*(sld - sld_solvent)*V
//	           * sin(q*L*cos(alpha)/2) / (q*L*cos(alpha)/2)
//	           * J1(q*R*sin(alpha)) / (q*R*sin(alpha))
//
// The 1D intensity is the orientation average of F^2 over alpha in
// [0, pi/2]; theta and phi orient the axis for 2D data only.
type Cylinder struct{}

func (Cylinder) Info() Info {
	inf := math.Inf(1)
	return Info{
		Name:  "cylinder",
		Title: "Right circular cylinder with uniform scattering length density.",
		Params: []ParamInfo{
			{Name: "sld", Unit: "1e-6/Ang^2", Default: 4, Lower: -inf, Upper: inf, Role: model.RoleSLD, Description: "Cylinder scattering length density"},
			{Name: "sld_solvent", Unit: "1e-6/Ang^2", Default: 1, Lower: -inf, Upper: inf, Role: model.RoleSLD, Description: "Solvent scattering length density"},
			{Name: "radius", Unit: "Ang", Default: 20, Lower: 0, Upper: inf, Role: model.RoleVolume, Polydisperse: true, Description: "Cylinder radius"},
			{Name: "length", Unit: "Ang", Default: 400, Lower: 0, Upper: inf, Role: model.RoleVolume, Polydisperse: true, Description: "Cylinder length"},
			{Name: "theta", Unit: "degrees", Default: 60, Lower: -inf, Upper: inf, Role: model.RoleOrientation, Polydisperse: true, Description: "latitude"},
			{Name: "phi", Unit: "degrees", Default: 60, Lower: -inf, Upper: inf, Role: model.RoleOrientation, Polydisperse: true, Description: "longitude"},
		},
	}
}

func cylinderAmplitude(q, alpha, radius, length, contrastVolume float64) float64 {
	halfLength := 0.5 * q * length * math.Cos(alpha)
	crossSection := q * radius * math.Sin(alpha)
	return contrastVolume * sinc(halfLength) * j1x(crossSection)
}

func (Cylinder) Iq(q []float64, p map[string]float64) ([]float64, error) {
	a := newArgs(p)
	sld := a.get("sld")
	sldSolvent := a.get("sld_solvent")
	radius := a.get("radius")
	length := a.get("length")
	if err := a.err(); err != nil {
		return nil, err
	}

	contrastVolume := (sld - sldSolvent) * cylinderVolume(radius, length)
	out := make([]float64, len(q))
	for i, qv := range q {
		out[i] = sldToInverseCm * orientAverage(func(alpha float64) float64 {
			return cylinderAmplitude(qv, alpha, radius, length, contrastVolume)
		})
	}
	return out, nil
}

func (Cylinder) Iqxy(qx, qy []float64, p map[string]float64) ([]float64, error) {
	a := newArgs(p)
	sld := a.get("sld")
	sldSolvent := a.get("sld_solvent")
	radius := a.get("radius")
	length := a.get("length")
	theta := a.get("theta")
	phi := a.get("phi")
	if err := a.err(); err != nil {
		return nil, err
	}

	contrastVolume := (sld - sldSolvent) * cylinderVolume(radius, length)
	axisX := math.Cos(radians(theta)) * math.Cos(radians(phi))
	axisY := math.Sin(radians(theta))

	out := make([]float64, len(qx))
	for i := range qx {
		q := math.Hypot(qx[i], qy[i])
		alpha := math.Pi / 2
		if q > 0 {
			cosAlpha := numutil.Clamp((qx[i]*axisX+qy[i]*axisY)/q, -1, 1)
			alpha = math.Acos(cosAlpha)
		}
		amp := cylinderAmplitude(q, alpha, radius, length, contrastVolume)
		out[i] = sldToInverseCm * amp * amp
	}
	return out, nil
}

func (Cylinder) Volume(p map[string]float64) float64 {
	return cylinderVolume(p["radius"], p["length"])
}

// EffectiveRadius is the radius of the sphere with the cylinder's
// second virial coefficient, used by external S(q) coupling.
func (Cylinder) EffectiveRadius(p map[string]float64) float64 {
	radius, length := p["radius"], p["length"]
	ddd := 0.75 * radius * (2*radius*length + (length+radius)*(length+math.Pi*radius))
	return 0.5 * math.Cbrt(ddd)
}

func cylinderVolume(radius, length float64) float64 {
	return math.Pi * radius * radius * length
}
