package shape

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSphereIqClosedForm(t *testing.T) {
	p := map[string]float64{"sld": 1, "sld_solvent": 6, "radius": 50}

	q := []float64{0.01, 0.05, 0.1}
	got, err := Sphere{}.Iq(q, p)
	if err != nil {
		t.Fatalf("iq: %v", err)
	}

	for i, qv := range q {
		u := qv * 50.0
		form := 3 * (math.Sin(u) - u*math.Cos(u)) / (u * u * u)
		volume := 4 * math.Pi / 3 * 50 * 50 * 50
		amp := (1.0 - 6.0) * volume * form
		want := 1e-4 * amp * amp
		if relDiff(got[i], want) > 1e-12 {
			t.Fatalf("iq[%d]: got=%g want=%g", i, got[i], want)
		}
	}
}

func TestSphereIqxyMatchesRadialIq(t *testing.T) {
	p := map[string]float64{"sld": 1, "sld_solvent": 6, "radius": 50}

	qx := []float64{0.03, 0, -0.06}
	qy := []float64{0.04, 0.05, 0.08}
	got2d, err := Sphere{}.Iqxy(qx, qy, p)
	if err != nil {
		t.Fatalf("iqxy: %v", err)
	}

	q := make([]float64, len(qx))
	for i := range qx {
		q[i] = math.Hypot(qx[i], qy[i])
	}
	got1d, err := Sphere{}.Iq(q, p)
	if err != nil {
		t.Fatalf("iq: %v", err)
	}
	for i := range q {
		if got2d[i] != got1d[i] {
			t.Fatalf("point %d: iqxy=%g iq=%g", i, got2d[i], got1d[i])
		}
	}
}

func TestCylinderLowQLimit(t *testing.T) {
	p := map[string]float64{"sld": 4, "sld_solvent": 1, "radius": 20, "length": 400}

	got, err := Cylinder{}.Iq([]float64{1e-8}, p)
	if err != nil {
		t.Fatalf("iq: %v", err)
	}

	// At q -> 0 the amplitude is constant, so the orientation average
	// collapses to (contrast * volume)^2.
	volume := math.Pi * 20 * 20 * 400
	amp := (4.0 - 1.0) * volume
	want := 1e-4 * amp * amp
	if relDiff(got[0], want) > 1e-9 {
		t.Fatalf("low-q limit: got=%g want=%g", got[0], want)
	}
}

func TestCylinderIqReferencePoint(t *testing.T) {
	p := map[string]float64{"sld": 4, "sld_solvent": 1, "radius": 20, "length": 400}

	got, err := Cylinder{}.Iq([]float64{0.1}, p)
	if err != nil {
		t.Fatalf("iq: %v", err)
	}

	// Independent rendition of the documented amplitude, orientation
	// averaged with a dense Simpson rule instead of the production
	// quadrature.
	const q = 0.1
	volume := math.Pi * 20 * 20 * 400
	amp := func(alpha float64) float64 {
		f := (4.0 - 1.0) * volume
		if x := 0.5 * q * 400 * math.Cos(alpha); x != 0 {
			f *= math.Sin(x) / x
		}
		if y := q * 20 * math.Sin(alpha); y != 0 {
			f *= 2 * math.J1(y) / y
		}
		return f
	}
	const n = 20000
	h := math.Pi / 2 / n
	sum := 0.0
	for i := 0; i <= n; i++ {
		f := amp(float64(i) * h)
		f = f * f * math.Sin(float64(i)*h)
		switch {
		case i == 0 || i == n:
			sum += f
		case i%2 == 1:
			sum += 4 * f
		default:
			sum += 2 * f
		}
	}
	want := 1e-4 * sum * h / 3

	if relDiff(got[0], want) > 1e-6 {
		t.Fatalf("cylinder at q=0.1: got=%g want=%g", got[0], want)
	}
}

func TestCylinderIqReportsAllMissingParams(t *testing.T) {
	_, err := Cylinder{}.Iq([]float64{0.1}, map[string]float64{"sld": 4})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got: %v", err)
	}
	msg := err.Error()
	for _, name := range []string{"length", "radius", "sld_solvent"} {
		if !strings.Contains(msg, name) {
			t.Fatalf("error %q missing parameter %s", msg, name)
		}
	}
}

func TestOrientAverageConstantAmplitude(t *testing.T) {
	// The average of a constant F over orientations is F^2 exactly:
	// integral of sin(alpha) over [0, pi/2] is 1.
	got := orientAverage(func(float64) float64 { return 2.5 })
	if relDiff(got, 6.25) > 1e-12 {
		t.Fatalf("constant average: got=%g want=6.25", got)
	}
}

func TestKernelHelperLimits(t *testing.T) {
	if sinc(0) != 1 || j1x(0) != 1 || sph3j(0) != 1 {
		t.Fatalf("zero limits: sinc=%g j1x=%g sph3j=%g", sinc(0), j1x(0), sph3j(0))
	}
	if got := sinc(math.Pi); math.Abs(got) > 1e-15 {
		t.Fatalf("sinc(pi): got=%g want=0", got)
	}
	// Small-argument expansions stay close to 1.
	if got := sph3j(1e-4); relDiff(got, 1) > 1e-6 {
		t.Fatalf("sph3j near zero: got=%g", got)
	}
}

func TestGaussianPeakUnitHeight(t *testing.T) {
	p := map[string]float64{"peak_pos": 0.05, "sigma": 0.005}
	got, err := GaussianPeak{}.Iq([]float64{0.05, 0.055}, p)
	if err != nil {
		t.Fatalf("iq: %v", err)
	}
	if got[0] != 1 {
		t.Fatalf("peak height: got=%g want=1", got[0])
	}
	want := math.Exp(-0.5)
	if relDiff(got[1], want) > 1e-12 {
		t.Fatalf("one sigma off peak: got=%g want=%g", got[1], want)
	}
}

func TestVolumeNormalized(t *testing.T) {
	if !VolumeNormalized(Cylinder{}.Info()) {
		t.Fatal("cylinder should be volume normalized")
	}
	if VolumeNormalized(GaussianPeak{}.Info()) {
		t.Fatal("gaussian_peak should not be volume normalized")
	}
}

func TestEffectiveRadius(t *testing.T) {
	if got := (Sphere{}).EffectiveRadius(map[string]float64{"radius": 50}); got != 50 {
		t.Fatalf("sphere effective radius: got=%g want=50", got)
	}
	got := Cylinder{}.EffectiveRadius(map[string]float64{"radius": 20, "length": 400})
	if got <= 20 || got >= 400 {
		t.Fatalf("cylinder effective radius out of range: %g", got)
	}
}

func TestCoreShellEllipsoidVolume(t *testing.T) {
	p := map[string]float64{
		"radius_equat_core": 20, "x_core": 3,
		"thick_shell": 30, "x_polar_shell": 1,
	}
	want := 4 * math.Pi / 3 * 50 * 50 * 90
	if got := (CoreShellEllipsoid{}).Volume(p); relDiff(got, want) > 1e-12 {
		t.Fatalf("volume: got=%g want=%g", got, want)
	}
	wantER := math.Cbrt(50 * 50 * 90)
	if got := (CoreShellEllipsoid{}).EffectiveRadius(p); relDiff(got, wantER) > 1e-12 {
		t.Fatalf("effective radius: got=%g want=%g", got, wantER)
	}
}

func TestCoreShellEllipsoidSphereLimit(t *testing.T) {
	// With x_core = 1, zero shell thickness and shell sld equal to the
	// solvent, the ellipsoid degenerates to a uniform sphere.
	pEll := map[string]float64{
		"radius_equat_core": 50, "x_core": 1,
		"thick_shell": 0, "x_polar_shell": 1,
		"sld_core": 1, "sld_shell": 6, "sld_solvent": 6,
	}
	pSph := map[string]float64{"sld": 1, "sld_solvent": 6, "radius": 50}

	q := []float64{0.01, 0.05}
	gotEll, err := CoreShellEllipsoid{}.Iq(q, pEll)
	if err != nil {
		t.Fatalf("ellipsoid iq: %v", err)
	}
	gotSph, err := Sphere{}.Iq(q, pSph)
	if err != nil {
		t.Fatalf("sphere iq: %v", err)
	}
	for i := range q {
		if relDiff(gotEll[i], gotSph[i]) > 1e-9 {
			t.Fatalf("point %d: ellipsoid=%g sphere=%g", i, gotEll[i], gotSph[i])
		}
	}
}

func TestRegistry(t *testing.T) {
	names := List()
	for _, want := range []string{"core_shell_ellipsoid", "cylinder", "gaussian_peak", "sphere"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("model %s not registered; have %v", want, names)
		}
	}

	if _, err := Resolve("no_such_model"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got: %v", err)
	}
	if err := Register("cylinder", func() Model { return Cylinder{} }); !errors.Is(err, ErrModelExists) {
		t.Fatalf("expected ErrModelExists, got: %v", err)
	}
}

func relDiff(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}
