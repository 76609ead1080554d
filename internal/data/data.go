package data

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Type tags the dataset kind delivered by the loading collaborator.
type Type string

const (
	Type1D     Type = "1d"
	Type2D     Type = "2d"
	TypeSesans Type = "sesans"
)

var ErrBadDataset = errors.New("malformed dataset")

// Dataset is the measured-data container handed across the loader
// boundary. For 1d and sesans data X holds the sample abscissas (q or
// spin-echo length); for 2d data Qx/Qy hold the detector coordinates.
// Intensity and Uncertainty always match the abscissa length.
type Dataset struct {
	Type        Type
	X           []float64
	Qx, Qy      []float64
	Intensity   []float64
	Uncertainty []float64
}

func (d *Dataset) Len() int {
	if d.Type == Type2D {
		return len(d.Qx)
	}
	return len(d.X)
}

func (d *Dataset) Validate() error {
	n := d.Len()
	if n == 0 {
		return fmt.Errorf("%w: no sample points", ErrBadDataset)
	}
	if d.Type == Type2D && len(d.Qx) != len(d.Qy) {
		return fmt.Errorf("%w: qx/qy length mismatch %d != %d", ErrBadDataset, len(d.Qx), len(d.Qy))
	}
	if len(d.Intensity) != n {
		return fmt.Errorf("%w: intensity length %d != %d", ErrBadDataset, len(d.Intensity), n)
	}
	if len(d.Uncertainty) != n {
		return fmt.Errorf("%w: uncertainty length %d != %d", ErrBadDataset, len(d.Uncertainty), n)
	}
	return nil
}

// Empty1D defines q calculation points for displaying a theory curve
// when there is no measured data. Intensity is zeroed and uncertainty
// set to 1 so residuals stay finite.
func Empty1D(qmin, qmax float64, n int) *Dataset {
	q := make([]float64, n)
	floats.Span(q, qmin, qmax)
	uncertainty := make([]float64, n)
	for i := range uncertainty {
		uncertainty[i] = 1
	}
	return &Dataset{
		Type:        Type1D,
		X:           q,
		Intensity:   make([]float64, n),
		Uncertainty: uncertainty,
	}
}

// Empty2D builds an n*n detector grid spanning [-qmax, qmax] on both
// axes.
func Empty2D(qmax float64, n int) *Dataset {
	axis := make([]float64, n)
	floats.Span(axis, -qmax, qmax)
	qx := make([]float64, 0, n*n)
	qy := make([]float64, 0, n*n)
	for _, y := range axis {
		for _, x := range axis {
			qx = append(qx, x)
			qy = append(qy, y)
		}
	}
	uncertainty := make([]float64, n*n)
	for i := range uncertainty {
		uncertainty[i] = 1
	}
	return &Dataset{
		Type:        Type2D,
		Qx:          qx,
		Qy:          qy,
		Intensity:   make([]float64, n*n),
		Uncertainty: uncertainty,
	}
}
