package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"sasfit/internal/model"
)

var (
	ErrInvalidParameter      = errors.New("invalid shape parameter")
	ErrUnrecognizedParameter = errors.New("unrecognized parameter")
	ErrModelExists           = errors.New("model already registered")
	ErrModelNotFound         = errors.New("model not found")
)

// sldToInverseCm converts (1e-6/Ang^2)^2 * Ang^3 contrast-volume terms
// into absolute intensity units of 1/cm.
const sldToInverseCm = 1e-4

// ParamInfo is the static declaration of one shape parameter.
type ParamInfo struct {
	Name         string
	Unit         string
	Default      float64
	Lower        float64
	Upper        float64
	Role         model.Role
	Polydisperse bool
	Description  string
}

// Info is the static metadata a model declares about itself.
type Info struct {
	Name        string
	Title       string
	Description string
	Params      []ParamInfo
}

func (i Info) Param(name string) (ParamInfo, bool) {
	for _, p := range i.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamInfo{}, false
}

// Defaults returns a complete parameter assignment at declared defaults.
func (i Info) Defaults() map[string]float64 {
	out := make(map[string]float64, len(i.Params))
	for _, p := range i.Params {
		out[p.Name] = p.Default
	}
	return out
}

// Model is a pure scattering kernel: no hidden state, deterministic for
// identical inputs. Iq and Iqxy return per-point intensity contributions
// before scale/volume normalization and background.
type Model interface {
	Info() Info
	Iq(q []float64, p map[string]float64) ([]float64, error)
	Iqxy(qx, qy []float64, p map[string]float64) ([]float64, error)
	Volume(p map[string]float64) float64
	// EffectiveRadius feeds external structure-factor coupling; the
	// formula is shape-specific physics, not part of the averaging core.
	EffectiveRadius(p map[string]float64) float64
}

// VolumeNormalized reports whether the model's intensity is divided by
// the (polydispersity-averaged) particle volume. Shape-independent
// models such as gaussian_peak opt out by declaring a unit volume and
// no volume-role parameters.
func VolumeNormalized(info Info) bool {
	for _, p := range info.Params {
		if p.Role == model.RoleVolume {
			return true
		}
	}
	return false
}

// args collects parameter lookups so a kernel can report every missing
// name in one error instead of failing on the first.
type args struct {
	p       map[string]float64
	missing []string
}

func newArgs(p map[string]float64) *args {
	return &args{p: p}
}

func (a *args) get(name string) float64 {
	v, ok := a.p[name]
	if !ok {
		a.missing = append(a.missing, name)
		return 0
	}
	return v
}

func (a *args) err() error {
	if len(a.missing) == 0 {
		return nil
	}
	sort.Strings(a.missing)
	return fmt.Errorf("%w: missing %s", ErrInvalidParameter, strings.Join(a.missing, ", "))
}
