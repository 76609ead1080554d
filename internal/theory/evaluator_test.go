package theory

import (
	"context"
	"errors"
	"math"
	"testing"

	"sasfit/internal/model"
	"sasfit/internal/polydisperse"
	"sasfit/internal/shape"
)

func sphereRequest(q []float64, grid polydisperse.Grid) Request {
	return Request{
		Model:      shape.Sphere{},
		Fixed:      map[string]float64{"sld": 1, "sld_solvent": 6, "radius": 50},
		Grid:       grid,
		Q:          q,
		Scale:      1,
		Background: 0,
	}
}

func TestComputeTrivialGridMatchesKernel(t *testing.T) {
	q := []float64{0.01, 0.05, 0.1}
	curve, err := Evaluator{Workers: 1}.Compute(context.Background(), sphereRequest(q, polydisperse.Trivial()))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(curve.Iq) != len(q) {
		t.Fatalf("iq length: got=%d want=%d", len(curve.Iq), len(q))
	}

	// With a single grid point the weighted sum reduces to the kernel
	// intensity divided by the particle volume.
	raw, err := shape.Sphere{}.Iq(q, map[string]float64{"sld": 1, "sld_solvent": 6, "radius": 50})
	if err != nil {
		t.Fatalf("kernel iq: %v", err)
	}
	volume := 4 * math.Pi / 3 * 50 * 50 * 50
	for i := range q {
		want := raw[i] / volume
		if math.Abs(curve.Iq[i]-want) > 1e-12*math.Abs(want) {
			t.Fatalf("iq[%d]: got=%g want=%g", i, curve.Iq[i], want)
		}
	}
}

func TestComputeScaleAndBackground(t *testing.T) {
	grid := polydisperse.Trivial()
	base, err := Evaluator{Workers: 1}.Compute(context.Background(), sphereRequest([]float64{0.02}, grid))
	if err != nil {
		t.Fatalf("compute base: %v", err)
	}

	req := sphereRequest([]float64{0.02}, grid)
	req.Scale = 2.5
	req.Background = 0.001
	scaled, err := Evaluator{Workers: 1}.Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("compute scaled: %v", err)
	}

	want := 2.5*base.Iq[0] + 0.001
	if math.Abs(scaled.Iq[0]-want) > 1e-12*want {
		t.Fatalf("scale/background: got=%g want=%g", scaled.Iq[0], want)
	}
}

func TestComputeDeterministicAcrossWorkerCounts(t *testing.T) {
	grid, err := polydisperse.Build([]polydisperse.ParamQuadrature{
		{
			Name: "radius", Center: 50, Sigma: 5, Lower: 0, Upper: math.Inf(1),
			Config: model.Polydispersity{Type: model.DistGaussian, Width: 0.1, NPoints: 35, NSigma: 3},
		},
	}, 1e-5)
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}

	q := []float64{0.005, 0.01, 0.05, 0.1, 0.3}
	serial, err := Evaluator{Workers: 1}.Compute(context.Background(), sphereRequest(q, grid))
	if err != nil {
		t.Fatalf("serial compute: %v", err)
	}
	for _, workers := range []int{2, 4, 16} {
		parallel, err := Evaluator{Workers: workers}.Compute(context.Background(), sphereRequest(q, grid))
		if err != nil {
			t.Fatalf("parallel compute (%d workers): %v", workers, err)
		}
		for i := range q {
			if serial.Iq[i] != parallel.Iq[i] {
				t.Fatalf("workers=%d iq[%d]: %g != %g", workers, i, parallel.Iq[i], serial.Iq[i])
			}
		}
	}
}

func TestComputeWeightScaleInvariance(t *testing.T) {
	grid, err := polydisperse.Build([]polydisperse.ParamQuadrature{
		{
			Name: "radius", Center: 50, Sigma: 5, Lower: 0, Upper: math.Inf(1),
			Config: model.Polydispersity{Type: model.DistGaussian, Width: 0.1, NPoints: 35, NSigma: 3},
		},
	}, 0)
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}

	// Scaling every weight and the total by the same constant must not
	// move the normalized theory at all. A power of two keeps the
	// comparison exact.
	scaled := grid
	scaled.Weights = append([]float64(nil), grid.Weights...)
	for i := range scaled.Weights {
		scaled.Weights[i] *= 4
	}
	scaled.Total = grid.Total * 4

	q := []float64{0.005, 0.02, 0.1, 0.3}
	base, err := Evaluator{Workers: 1}.Compute(context.Background(), sphereRequest(q, grid))
	if err != nil {
		t.Fatalf("compute base: %v", err)
	}
	got, err := Evaluator{Workers: 1}.Compute(context.Background(), sphereRequest(q, scaled))
	if err != nil {
		t.Fatalf("compute scaled: %v", err)
	}
	for i := range q {
		if base.Iq[i] != got.Iq[i] {
			t.Fatalf("iq[%d] moved under weight scaling: %g != %g", i, got.Iq[i], base.Iq[i])
		}
	}
}

func TestComputeAuxiliaryCurve(t *testing.T) {
	curve, err := Evaluator{Workers: 1}.Compute(context.Background(), sphereRequest([]float64{0.01, 0.1}, polydisperse.Trivial()))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(curve.QCalc) != len(curve.IqCalc) {
		t.Fatalf("qcalc/iqcalc length mismatch: %d != %d", len(curve.QCalc), len(curve.IqCalc))
	}
	if len(curve.QCalc) == 0 {
		t.Fatal("expected auxiliary curve for 1d data")
	}
	if curve.QCalc[0] < 0.01*(1-1e-9) || curve.QCalc[len(curve.QCalc)-1] > 0.1*(1+1e-9) {
		t.Fatalf("auxiliary grid outside data range: [%g, %g]", curve.QCalc[0], curve.QCalc[len(curve.QCalc)-1])
	}
}

func TestComputeTwoD(t *testing.T) {
	req := Request{
		Model: shape.Sphere{},
		Fixed: map[string]float64{"sld": 1, "sld_solvent": 6, "radius": 50},
		Grid:  polydisperse.Trivial(),
		Qx:    []float64{0.01, 0.02},
		Qy:    []float64{0.0, 0.02},
		TwoD:  true,
		Scale: 1,
	}
	curve, err := Evaluator{Workers: 2}.Compute(context.Background(), req)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(curve.Iq) != 2 {
		t.Fatalf("iq length: got=%d want=2", len(curve.Iq))
	}
	if len(curve.IqCalc) != 0 {
		t.Fatal("2d evaluation should not produce an auxiliary curve")
	}
}

func TestComputeNoSamples(t *testing.T) {
	_, err := Evaluator{}.Compute(context.Background(), sphereRequest(nil, polydisperse.Trivial()))
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got: %v", err)
	}
}

func TestComputeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Evaluator{Workers: 2}.Compute(ctx, sphereRequest([]float64{0.01}, polydisperse.Trivial()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}
