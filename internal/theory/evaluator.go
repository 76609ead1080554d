package theory

import (
	"context"
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"sasfit/internal/polydisperse"
	"sasfit/internal/shape"
)

var ErrNoSamples = errors.New("no q samples to evaluate")

// calcPoints sizes the auxiliary low-resolution curve used for
// smoothing/extrapolation before display.
const calcPoints = 50

// Curve is an immutable theory curve: intensity per requested q sample,
// plus the auxiliary coarse Iq_calc curve for 1D data.
type Curve struct {
	Q      []float64
	Iq     []float64
	QCalc  []float64
	IqCalc []float64
}

// Request bundles one evaluation: the kernel, the complete fixed
// parameter assignment, the polydispersity grid and the sample points.
type Request struct {
	Model      shape.Model
	Fixed      map[string]float64
	Grid       polydisperse.Grid
	Q          []float64
	Qx, Qy     []float64
	TwoD       bool
	Scale      float64
	Background float64
}

// Evaluator runs the weighted sum over the polydispersity grid. Grid
// entries are independent, so they are distributed over Workers
// goroutines; the reduction walks entries in index order, so the result
// is identical for any worker count.
type Evaluator struct {
	Workers int
}

func (e Evaluator) Compute(ctx context.Context, req Request) (Curve, error) {
	if req.TwoD {
		if len(req.Qx) == 0 || len(req.Qx) != len(req.Qy) {
			return Curve{}, ErrNoSamples
		}
	} else if len(req.Q) == 0 {
		return Curve{}, ErrNoSamples
	}

	// The coarse auxiliary grid rides along with the requested samples
	// so the polydispersity loop runs once.
	q := req.Q
	var qCalc []float64
	if !req.TwoD {
		qCalc = calcGrid(req.Q)
		q = append(append([]float64(nil), req.Q...), qCalc...)
	}

	entries := req.Grid.Size()
	partials := make([][]float64, entries)
	volumes := make([]float64, entries)
	errs := make([]error, entries)

	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > entries {
		workers = entries
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				assignment := make(map[string]float64, len(req.Fixed)+len(req.Grid.Names))
				for k, v := range req.Fixed {
					assignment[k] = v
				}
				for k, name := range req.Grid.Names {
					assignment[name] = req.Grid.Combos[idx][k]
				}

				var contrib []float64
				var err error
				if req.TwoD {
					contrib, err = req.Model.Iqxy(req.Qx, req.Qy, assignment)
				} else {
					contrib, err = req.Model.Iq(q, assignment)
				}
				if err != nil {
					errs[idx] = err
					continue
				}
				partials[idx] = contrib
				volumes[idx] = req.Model.Volume(assignment)
			}
		}()
	}
	for i := 0; i < entries; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Curve{}, err
		}
	}

	n := len(q)
	if req.TwoD {
		n = len(req.Qx)
	}
	num := make([]float64, n)
	var volSum float64
	for i := 0; i < entries; i++ {
		w := req.Grid.Weights[i]
		floats.AddScaled(num, w, partials[i])
		volSum += w * volumes[i]
	}

	norm := req.Grid.Total
	if shape.VolumeNormalized(req.Model.Info()) {
		if vbar := volSum / req.Grid.Total; vbar > 0 {
			norm *= vbar
		}
	}
	iq := make([]float64, n)
	for j := range iq {
		iq[j] = req.Scale*num[j]/norm + req.Background
	}

	if req.TwoD {
		return Curve{Iq: iq}, nil
	}
	curve := Curve{
		Q:      append([]float64(nil), req.Q...),
		Iq:     iq[:len(req.Q):len(req.Q)],
		QCalc:  qCalc,
		IqCalc: iq[len(req.Q):],
	}
	return curve, nil
}

// calcGrid spans the requested q range at low resolution, log-spaced
// when the range is strictly positive.
func calcGrid(q []float64) []float64 {
	lo, hi := floats.Min(q), floats.Max(q)
	out := make([]float64, calcPoints)
	if lo > 0 {
		logLo, logHi := math.Log(lo), math.Log(hi)
		floats.Span(out, logLo, logHi)
		for i := range out {
			out[i] = math.Exp(out[i])
		}
		return out
	}
	floats.Span(out, lo, hi)
	return out
}
