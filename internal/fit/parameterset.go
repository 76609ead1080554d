package fit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"sasfit/internal/model"
	"sasfit/internal/polydisperse"
	"sasfit/internal/shape"
)

// Common parameters every model carries in addition to its declared
// shape parameters.
const (
	paramScale      = "scale"
	paramBackground = "background"
)

// Polydispersity satellite defaults, applied when a polydisperse
// parameter has no explicit configuration.
const (
	defaultPDPoints = 35
	defaultPDNSigma = 3
)

// FitParameter is the capability contract for the external optimizer
// collaborator: the core reads and writes values through it and never
// depends on a concrete optimizer type.
type FitParameter interface {
	Value() float64
	SetValue(float64)
	Bounds() (float64, float64)
}

// ParameterSet binds every declared shape parameter (plus scale and
// background) to a current value and bounds, and each polydisperse
// parameter to its distribution configuration.
type ParameterSet struct {
	info   shape.Info
	params map[string]*model.Parameter
	pd     map[string]*model.Polydispersity
	order  []string
}

// NewParameterSet builds the bound parameter table from the model's
// static metadata. Overrides are name=value pairs; polydispersity
// satellites use the name_pd, name_pd_n and name_pd_nsigma suffixes and
// distribution types the name_pd_type suffix. Every unrecognized name
// is reported together in a single error.
func NewParameterSet(info shape.Info, overrides map[string]float64, pdTypes map[string]string) (*ParameterSet, error) {
	ps := &ParameterSet{
		info:   info,
		params: make(map[string]*model.Parameter),
		pd:     make(map[string]*model.Polydispersity),
	}
	for _, p := range info.Params {
		ps.params[p.Name] = &model.Parameter{
			Name:         p.Name,
			Value:        p.Default,
			Lower:        p.Lower,
			Upper:        p.Upper,
			Polydisperse: p.Polydisperse,
		}
		ps.order = append(ps.order, p.Name)
		if p.Polydisperse {
			ps.pd[p.Name] = &model.Polydispersity{
				Type:    model.DistGaussian,
				NPoints: defaultPDPoints,
				NSigma:  defaultPDNSigma,
			}
		}
	}
	ps.params[paramScale] = &model.Parameter{Name: paramScale, Value: 1, Lower: 0, Upper: math.Inf(1)}
	ps.params[paramBackground] = &model.Parameter{Name: paramBackground, Value: 0, Lower: math.Inf(-1), Upper: math.Inf(1)}
	ps.order = append(ps.order, paramScale, paramBackground)

	var unrecognized []string
	for name, value := range overrides {
		if !ps.applyOverride(name, value) {
			unrecognized = append(unrecognized, name)
		}
	}
	for name, kind := range pdTypes {
		base, ok := strings.CutSuffix(name, "_pd_type")
		if !ok || ps.pd[base] == nil {
			unrecognized = append(unrecognized, name)
			continue
		}
		ps.pd[base].Type = model.DistributionType(kind)
	}
	if len(unrecognized) > 0 {
		sort.Strings(unrecognized)
		return nil, fmt.Errorf("%w: %s", shape.ErrUnrecognizedParameter, strings.Join(unrecognized, ", "))
	}
	return ps, nil
}

func (ps *ParameterSet) applyOverride(name string, value float64) bool {
	if p, ok := ps.params[name]; ok {
		p.Value = value
		return true
	}
	if base, ok := strings.CutSuffix(name, "_pd_nsigma"); ok && ps.pd[base] != nil {
		ps.pd[base].NSigma = value
		return true
	}
	if base, ok := strings.CutSuffix(name, "_pd_n"); ok && ps.pd[base] != nil {
		ps.pd[base].NPoints = int(value)
		return true
	}
	if base, ok := strings.CutSuffix(name, "_pd"); ok && ps.pd[base] != nil {
		ps.pd[base].Width = value
		return true
	}
	return false
}

// Param returns the bound parameter for name.
func (ps *ParameterSet) Param(name string) (*model.Parameter, bool) {
	p, ok := ps.params[name]
	return p, ok
}

// SetValue mutates one parameter value. The caller owns cache
// invalidation: call Experiment.Update after a batch of writes.
func (ps *ParameterSet) SetValue(name string, value float64) error {
	p, ok := ps.params[name]
	if !ok {
		return fmt.Errorf("%w: %s", shape.ErrUnrecognizedParameter, name)
	}
	p.Value = value
	return nil
}

// SetPolydispersity replaces the distribution configuration of a
// declared polydisperse parameter.
func (ps *ParameterSet) SetPolydispersity(name string, pd model.Polydispersity) error {
	if ps.pd[name] == nil {
		return fmt.Errorf("%w: %s is not polydisperse", shape.ErrUnrecognizedParameter, name)
	}
	*ps.pd[name] = pd
	return nil
}

// Polydispersity returns the configuration for a polydisperse
// parameter, or a trivial one otherwise.
func (ps *ParameterSet) Polydispersity(name string) model.Polydispersity {
	if pd := ps.pd[name]; pd != nil {
		return *pd
	}
	return model.Polydispersity{}
}

func (ps *ParameterSet) Scale() float64 {
	return ps.params[paramScale].Value
}

func (ps *ParameterSet) Background() float64 {
	return ps.params[paramBackground].Value
}

// Assignment returns the complete shape-parameter assignment (scale and
// background excluded; those are applied after averaging).
func (ps *ParameterSet) Assignment() map[string]float64 {
	out := make(map[string]float64, len(ps.info.Params))
	for _, p := range ps.info.Params {
		out[p.Name] = ps.params[p.Name].Value
	}
	return out
}

// State flattens the full parameter state, polydispersity satellites
// included, into a name->value map plus the distribution type strings.
// This is the persistence-collaborator mapping.
func (ps *ParameterSet) State() (map[string]float64, map[string]string) {
	values := make(map[string]float64, len(ps.order))
	types := make(map[string]string, len(ps.pd))
	for _, name := range ps.order {
		values[name] = ps.params[name].Value
		if pd := ps.pd[name]; pd != nil {
			values[name+"_pd"] = pd.Width
			values[name+"_pd_n"] = float64(pd.NPoints)
			values[name+"_pd_nsigma"] = pd.NSigma
			types[name+"_pd_type"] = string(pd.Type)
		}
	}
	return values, types
}

// Quadratures assembles the polydispersity inputs for the grid builder.
// Sigma is relative (width * |value|) for size parameters and absolute
// for orientation angles, following the distribution conventions of the
// reference implementation.
func (ps *ParameterSet) Quadratures() []polydisperse.ParamQuadrature {
	var out []polydisperse.ParamQuadrature
	for _, info := range ps.info.Params {
		pd := ps.pd[info.Name]
		if pd == nil || pd.Trivial() {
			continue
		}
		p := ps.params[info.Name]
		sigma := pd.Width
		if info.Role != model.RoleOrientation {
			sigma = pd.Width * math.Abs(p.Value)
		}
		out = append(out, polydisperse.ParamQuadrature{
			Name:   info.Name,
			Center: p.Value,
			Sigma:  sigma,
			Lower:  p.Lower,
			Upper:  p.Upper,
			Config: *pd,
		})
	}
	return out
}

// Adjustable exposes the named parameters through the optimizer-facing
// interface.
func (ps *ParameterSet) Adjustable(names []string) ([]FitParameter, error) {
	out := make([]FitParameter, 0, len(names))
	var unrecognized []string
	for _, name := range names {
		p, ok := ps.params[name]
		if !ok {
			unrecognized = append(unrecognized, name)
			continue
		}
		out = append(out, boundParameter{p})
	}
	if len(unrecognized) > 0 {
		sort.Strings(unrecognized)
		return nil, fmt.Errorf("%w: %s", shape.ErrUnrecognizedParameter, strings.Join(unrecognized, ", "))
	}
	return out, nil
}

// boundParameter adapts a model.Parameter to the FitParameter
// capability.
type boundParameter struct {
	p *model.Parameter
}

func (b boundParameter) Value() float64 {
	return b.p.Value
}

func (b boundParameter) SetValue(v float64) {
	b.p.Value = v
}

func (b boundParameter) Bounds() (float64, float64) {
	return b.p.Bounds()
}
