package fit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"

	"sasfit/internal/data"
	"sasfit/internal/polydisperse"
	"sasfit/internal/shape"
	"sasfit/internal/theory"
)

var ErrShapeMismatch = errors.New("theory/data shape mismatch")

// Experiment ties one model, one parameter set and one dataset into a
// fit objective. The theory curve is cached in a single slot; any
// parameter write must be followed by Update before the next read.
type Experiment struct {
	model   shape.Model
	params  *ParameterSet
	dataset *data.Dataset
	cutoff  float64
	eval    theory.Evaluator

	cache *theory.Curve
	rng   *rand.Rand
}

// NewExperiment validates the dataset and binds the collaborators.
// Cutoff is the relative polydispersity weight cutoff; workers sizes
// the evaluation pool (<=1 means serial).
func NewExperiment(m shape.Model, params *ParameterSet, d *data.Dataset, cutoff float64, workers int) (*Experiment, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Experiment{
		model:   m,
		params:  params,
		dataset: d,
		cutoff:  cutoff,
		eval:    theory.Evaluator{Workers: workers},
		rng:     rand.New(rand.NewSource(1)),
	}, nil
}

func (e *Experiment) Model() shape.Model     { return e.model }
func (e *Experiment) Params() *ParameterSet  { return e.params }
func (e *Experiment) Dataset() *data.Dataset { return e.dataset }
func (e *Experiment) Numpoints() int         { return e.dataset.Len() }

// Seed fixes the noise source used by SimulateData.
func (e *Experiment) Seed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// Update discards the cached theory curve. Callers batch parameter
// writes and call Update once; reads before the next Update reuse the
// cached curve.
func (e *Experiment) Update() {
	e.cache = nil
}

// Theory returns the cached curve, computing it on first read after an
// Update.
func (e *Experiment) Theory() (*theory.Curve, error) {
	if e.cache != nil {
		return e.cache, nil
	}
	grid, err := polydisperse.Build(e.params.Quadratures(), e.cutoff)
	if err != nil {
		return nil, err
	}
	req := theory.Request{
		Model:      e.model,
		Fixed:      e.params.Assignment(),
		Grid:       grid,
		Scale:      e.params.Scale(),
		Background: e.params.Background(),
	}
	if e.dataset.Type == data.Type2D {
		req.TwoD = true
		req.Qx, req.Qy = e.dataset.Qx, e.dataset.Qy
	} else {
		req.Q = e.dataset.X
	}
	curve, err := e.eval.Compute(context.Background(), req)
	if err != nil {
		return nil, err
	}
	e.cache = &curve
	return e.cache, nil
}

// Residuals returns (theory - measured) / uncertainty per sample.
func (e *Experiment) Residuals() ([]float64, error) {
	curve, err := e.Theory()
	if err != nil {
		return nil, err
	}
	n := e.dataset.Len()
	if len(curve.Iq) != n {
		return nil, fmt.Errorf("%w: theory %d points, data %d", ErrShapeMismatch, len(curve.Iq), n)
	}
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = (curve.Iq[i] - e.dataset.Intensity[i]) / e.dataset.Uncertainty[i]
	}
	return resid, nil
}

// Nllf is the scalar fit objective: half the sum of squared residuals.
func (e *Experiment) Nllf() (float64, error) {
	resid, err := e.Residuals()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, r := range resid {
		sum += r * r
	}
	return 0.5 * sum, nil
}

// NonfiniteResiduals counts NaN/Inf residuals, the first thing to check
// when an optimizer stalls.
func (e *Experiment) NonfiniteResiduals() (int, error) {
	resid, err := e.Residuals()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, r := range resid {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			count++
		}
	}
	return count, nil
}

// SimulateData overwrites the measured intensity with the current
// theory. Noise is a percentage: each point is perturbed by a gaussian
// draw with sigma = noise/100 * |I|, and the uncertainty column is set
// to that sigma. Noise <= 0 copies the theory exactly and leaves the
// uncertainties alone, so residuals come back identically zero.
func (e *Experiment) SimulateData(noise float64) error {
	curve, err := e.Theory()
	if err != nil {
		return err
	}
	if len(curve.Iq) != e.dataset.Len() {
		return fmt.Errorf("%w: theory %d points, data %d", ErrShapeMismatch, len(curve.Iq), e.dataset.Len())
	}
	for i, iq := range curve.Iq {
		if noise > 0 {
			dI := noise / 100 * math.Abs(iq)
			e.dataset.Intensity[i] = iq + dI*e.rng.NormFloat64()
			e.dataset.Uncertainty[i] = dI
		} else {
			e.dataset.Intensity[i] = iq
		}
	}
	e.Update()
	return nil
}

// PlotPayload is the read-only bundle handed to an external plotting
// collaborator.
type PlotPayload struct {
	Data      *data.Dataset
	Theory    []float64
	Residuals []float64
	QCalc     []float64
	IqCalc    []float64
	View      string
}

// PlotData assembles the current state for plotting without exposing
// the cache slot.
func (e *Experiment) PlotData(view string) (PlotPayload, error) {
	curve, err := e.Theory()
	if err != nil {
		return PlotPayload{}, err
	}
	resid, err := e.Residuals()
	if err != nil {
		return PlotPayload{}, err
	}
	return PlotPayload{
		Data:      e.dataset,
		Theory:    append([]float64(nil), curve.Iq...),
		Residuals: resid,
		QCalc:     append([]float64(nil), curve.QCalc...),
		IqCalc:    append([]float64(nil), curve.IqCalc...),
		View:      view,
	}, nil
}

// Save writes the current theory as a two-column ascii table next to
// the given basename. Only X-bearing data (1d, sesans) has a natural
// two-column form; 2d experiments write nothing.
func (e *Experiment) Save(basename string) error {
	if e.dataset.Type == data.Type2D {
		return nil
	}
	curve, err := e.Theory()
	if err != nil {
		return err
	}
	x := e.dataset.X
	var b strings.Builder
	for i := range curve.Iq {
		fmt.Fprintf(&b, "%.9e %.9e\n", x[i], curve.Iq[i])
	}
	return os.WriteFile(basename+"-theory.dat", []byte(b.String()), 0o644)
}
