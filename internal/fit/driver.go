package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"sasfit/internal/numutil"
)

// Method names a local optimizer. The zero value selects Nelder-Mead,
// which needs no gradients and copes with the noisy objectives that
// weight cutoffs produce.
type Method string

const (
	MethodNelderMead Method = "nelder-mead"
	MethodBFGS       Method = "bfgs"
	MethodLBFGS      Method = "lbfgs"
	MethodGradient   Method = "gradient"
)

var ErrUnknownMethod = errors.New("unknown fit method")

func methodFor(m Method) (optimize.Method, error) {
	switch m {
	case "", MethodNelderMead:
		return &optimize.NelderMead{}, nil
	case MethodBFGS:
		return &optimize.BFGS{}, nil
	case MethodLBFGS:
		return &optimize.LBFGS{}, nil
	case MethodGradient:
		return &optimize.GradientDescent{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, m)
}

// Result reports the state at the end of a minimization run.
type Result struct {
	NLLF      float64
	Values    map[string]float64
	History   []float64
	FuncEvals int
}

// Minimize adjusts the named parameters of the experiment to minimize
// its objective. Values are clamped to the declared bounds before each
// evaluation; evaluation failures and NaN objectives are mapped to +Inf
// so the optimizer backs away from them. On return the experiment holds
// the best parameters found, cache already refreshed.
func Minimize(e *Experiment, names []string, method Method, maxIter int) (Result, error) {
	meth, err := methodFor(method)
	if err != nil {
		return Result{}, err
	}
	fitParams, err := e.Params().Adjustable(names)
	if err != nil {
		return Result{}, err
	}
	if len(fitParams) == 0 {
		return Result{}, fmt.Errorf("%w: no parameters to fit", ErrUnknownMethod)
	}

	var history []float64
	objective := func(x []float64) float64 {
		for i, p := range fitParams {
			lo, hi := p.Bounds()
			p.SetValue(numutil.Clamp(x[i], lo, hi))
		}
		e.Update()
		nllf, err := e.Nllf()
		if err != nil || math.IsNaN(nllf) {
			return math.Inf(1)
		}
		history = append(history, nllf)
		return nllf
	}

	x0 := make([]float64, len(fitParams))
	for i, p := range fitParams {
		x0[i] = p.Value()
	}

	settings := &optimize.Settings{}
	if maxIter > 0 {
		settings.MajorIterations = maxIter
	}
	res, err := optimize.Minimize(optimize.Problem{Func: objective}, x0, settings, meth)
	if err != nil && res == nil {
		return Result{}, err
	}

	// Reinstall the best point; the optimizer may have probed elsewhere
	// after it.
	best := objective(res.X)
	values := make(map[string]float64, len(names))
	for i, name := range names {
		values[name] = fitParams[i].Value()
	}
	return Result{
		NLLF:      best,
		Values:    values,
		History:   history,
		FuncEvals: res.Stats.FuncEvaluations,
	}, nil
}
