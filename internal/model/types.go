package model

import "math"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Role classifies how a shape parameter enters the scattering kernel.
type Role string

const (
	RoleVolume      Role = "volume"
	RoleSLD         Role = "sld"
	RoleOrientation Role = "orientation"
	RoleOther       Role = "other"
)

// DistributionType names a polydispersity weight distribution.
type DistributionType string

const (
	DistGaussian    DistributionType = "gaussian"
	DistRectangular DistributionType = "rectangular"
	DistLogNormal   DistributionType = "lognormal"
	DistSchulz      DistributionType = "schulz"
	DistArray       DistributionType = "array"
)

// Parameter binds one shape parameter to its current value and bounds.
// Keeping lower <= value <= upper is the optimizer's job, not ours.
type Parameter struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Lower        float64 `json:"lower"`
	Upper        float64 `json:"upper"`
	Polydisperse bool    `json:"polydisperse"`
}

func (p Parameter) Bounds() (float64, float64) {
	return p.Lower, p.Upper
}

// Unbounded reports whether both bounds are infinite.
func (p Parameter) Unbounded() bool {
	return math.IsInf(p.Lower, -1) && math.IsInf(p.Upper, 1)
}

// Polydispersity configures the weight distribution attached to a
// polydisperse parameter. Width is relative (sigma = width * |value|)
// for size parameters and absolute for orientation angles.
type Polydispersity struct {
	Width   float64          `json:"width"`
	Type    DistributionType `json:"type"`
	NPoints int              `json:"n_points"`
	NSigma  float64          `json:"n_sigma"`

	// Values and Weights are only consulted for DistArray.
	Values  []float64 `json:"values,omitempty"`
	Weights []float64 `json:"weights,omitempty"`
}

// Trivial reports whether the configuration collapses to a single point
// at the parameter value with weight 1, i.e. no averaging happens.
func (pd Polydispersity) Trivial() bool {
	if pd.Type == DistArray {
		return len(pd.Values) == 0
	}
	return pd.Width <= 0 || pd.NPoints <= 0
}

// SessionRecord is the persisted snapshot of one fit session. The flat
// parameter map includes the _pd, _pd_n and _pd_nsigma satellites; the
// distribution type strings live in PDTypes. A restored session rebuilds
// its kernel from the model registry on first use; no live handles are
// serialized.
type SessionRecord struct {
	VersionedRecord
	ID           string             `json:"id"`
	Model        string             `json:"model"`
	CreatedAtUTC string             `json:"created_at_utc"`
	Cutoff       float64            `json:"cutoff"`
	Parameters   map[string]float64 `json:"parameters"`
	PDTypes      map[string]string  `json:"pd_types"`
	NLLF         float64            `json:"nllf"`
}

// TheoryRecord persists a two-column (x, theory) table for a session.
type TheoryRecord struct {
	VersionedRecord
	SessionID string    `json:"session_id"`
	X         []float64 `json:"x"`
	Theory    []float64 `json:"theory"`
}
