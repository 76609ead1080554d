package fit

import (
	"errors"
	"math"
	"testing"

	"sasfit/internal/data"
	"sasfit/internal/shape"
)

func TestMinimizeRecoversPeakPosition(t *testing.T) {
	truth, err := NewParameterSet(shape.GaussianPeak{}.Info(), map[string]float64{"peak_pos": 0.05}, nil)
	if err != nil {
		t.Fatalf("truth parameters: %v", err)
	}
	exp, err := NewExperiment(shape.GaussianPeak{}, truth, data.Empty1D(0.01, 0.1, 60), 0, 1)
	if err != nil {
		t.Fatalf("experiment: %v", err)
	}
	if err := exp.SimulateData(0); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	// Start away from the answer and let the optimizer walk back.
	if err := exp.Params().SetValue("peak_pos", 0.043); err != nil {
		t.Fatalf("perturb: %v", err)
	}
	exp.Update()

	result, err := Minimize(exp, []string{"peak_pos"}, MethodNelderMead, 0)
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}

	if got := result.Values["peak_pos"]; math.Abs(got-0.05) > 1e-4 {
		t.Fatalf("recovered peak_pos=%g, want 0.05", got)
	}
	if result.NLLF > 1e-6 {
		t.Fatalf("final nllf too large: %g", result.NLLF)
	}
	if len(result.History) == 0 || result.FuncEvals == 0 {
		t.Fatalf("missing run statistics: history=%d evals=%d", len(result.History), result.FuncEvals)
	}
	// The experiment itself holds the fitted value afterwards.
	p, _ := exp.Params().Param("peak_pos")
	if p.Value != result.Values["peak_pos"] {
		t.Fatalf("experiment not left at best point: %g != %g", p.Value, result.Values["peak_pos"])
	}
}

func TestMinimizeUnknownMethod(t *testing.T) {
	ps, err := NewParameterSet(shape.GaussianPeak{}.Info(), nil, nil)
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	exp, err := NewExperiment(shape.GaussianPeak{}, ps, data.Empty1D(0.01, 0.1, 10), 0, 1)
	if err != nil {
		t.Fatalf("experiment: %v", err)
	}
	if _, err := Minimize(exp, []string{"peak_pos"}, "annealing", 0); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got: %v", err)
	}
}

func TestMinimizeUnknownParameter(t *testing.T) {
	ps, err := NewParameterSet(shape.GaussianPeak{}.Info(), nil, nil)
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	exp, err := NewExperiment(shape.GaussianPeak{}, ps, data.Empty1D(0.01, 0.1, 10), 0, 1)
	if err != nil {
		t.Fatalf("experiment: %v", err)
	}
	if _, err := Minimize(exp, []string{"not_a_param"}, MethodNelderMead, 0); !errors.Is(err, shape.ErrUnrecognizedParameter) {
		t.Fatalf("expected ErrUnrecognizedParameter, got: %v", err)
	}
}
