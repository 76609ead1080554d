package sasfit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facette/natsort"
	"github.com/google/uuid"

	"sasfit/internal/data"
	"sasfit/internal/fit"
	"sasfit/internal/model"
	"sasfit/internal/shape"
	"sasfit/internal/storage"
)

const (
	defaultDBPath  = "sasfit.db"
	defaultCutoff  = 1e-5
	defaultWorkers = 4
	defaultQMin    = 0.005
	defaultQMax    = 0.5
	defaultPoints  = 100
)

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store       storage.Store
	initialized bool
}

type ModelItem struct {
	Name        string
	Title       string
	Description string
	Parameters  int
}

type FitRequest struct {
	Model      string
	DataPath   string
	Parameters map[string]float64
	PDTypes    map[string]string
	Fit        []string
	Method     string
	MaxIter    int
	// Cutoff trims negligible polydispersity weights. Zero takes the
	// default; a negative value requests the exact no-cutoff case.
	Cutoff  float64
	Workers int
}

type FitSummary struct {
	SessionID string
	NLLF      float64
	Values    map[string]float64
	FuncEvals int
	Points    int
}

type SimulateRequest struct {
	Model      string
	Parameters map[string]float64
	PDTypes    map[string]string
	QMin       float64
	QMax       float64
	Points     int
	Noise      float64
	Seed       int64
	// Cutoff follows the FitRequest convention: zero for the default,
	// negative for the exact no-cutoff case.
	Cutoff  float64
	Workers int
}

type SimulateSummary struct {
	SessionID string
	Q         []float64
	Intensity []float64
}

type SessionItem struct {
	SessionID    string
	Model        string
	CreatedAtUTC string
	NLLF         float64
}

type ParameterValue struct {
	Name  string
	Value float64
}

type TheoryTable struct {
	SessionID string
	X         []float64
	Theory    []float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Models lists the registered scattering kernels.
func (c *Client) Models(_ context.Context) ([]ModelItem, error) {
	names := shape.List()
	out := make([]ModelItem, 0, len(names))
	for _, name := range names {
		kernel, err := shape.Resolve(name)
		if err != nil {
			return nil, err
		}
		info := kernel.Info()
		out = append(out, ModelItem{
			Name:        info.Name,
			Title:       info.Title,
			Description: info.Description,
			Parameters:  len(info.Params),
		})
	}
	return out, nil
}

// Fit loads a measured dataset, adjusts the requested parameters and
// persists the resulting session, theory curve and objective history.
func (c *Client) Fit(ctx context.Context, req FitRequest) (FitSummary, error) {
	if req.Model == "" {
		return FitSummary{}, errors.New("model name is required")
	}
	if req.DataPath == "" {
		return FitSummary{}, errors.New("data path is required")
	}
	if len(req.Fit) == 0 {
		return FitSummary{}, errors.New("at least one parameter to fit is required")
	}
	req.Cutoff = effectiveCutoff(req.Cutoff)
	if req.Workers <= 0 {
		req.Workers = defaultWorkers
	}
	if err := c.Init(ctx); err != nil {
		return FitSummary{}, err
	}

	dataset, err := data.LoadAscii(req.DataPath)
	if err != nil {
		return FitSummary{}, err
	}
	exp, err := c.buildExperiment(req.Model, req.Parameters, req.PDTypes, dataset, req.Cutoff, req.Workers)
	if err != nil {
		return FitSummary{}, err
	}

	result, err := fit.Minimize(exp, req.Fit, fit.Method(req.Method), req.MaxIter)
	if err != nil {
		return FitSummary{}, err
	}

	sessionID := uuid.NewString()
	if err := c.persistSession(ctx, sessionID, req.Model, req.Cutoff, exp, result.NLLF); err != nil {
		return FitSummary{}, err
	}
	if err := c.store.SaveNLLFHistory(ctx, sessionID, result.History); err != nil {
		return FitSummary{}, err
	}

	return FitSummary{
		SessionID: sessionID,
		NLLF:      result.NLLF,
		Values:    result.Values,
		FuncEvals: result.FuncEvals,
		Points:    exp.Numpoints(),
	}, nil
}

// Simulate evaluates the model on a synthetic q grid, optionally
// injecting gaussian noise, and persists the result as a session.
func (c *Client) Simulate(ctx context.Context, req SimulateRequest) (SimulateSummary, error) {
	if req.Model == "" {
		return SimulateSummary{}, errors.New("model name is required")
	}
	if req.QMin <= 0 {
		req.QMin = defaultQMin
	}
	if req.QMax <= req.QMin {
		req.QMax = defaultQMax
	}
	if req.Points <= 0 {
		req.Points = defaultPoints
	}
	req.Cutoff = effectiveCutoff(req.Cutoff)
	if req.Workers <= 0 {
		req.Workers = defaultWorkers
	}
	if err := c.Init(ctx); err != nil {
		return SimulateSummary{}, err
	}

	dataset := data.Empty1D(req.QMin, req.QMax, req.Points)
	exp, err := c.buildExperiment(req.Model, req.Parameters, req.PDTypes, dataset, req.Cutoff, req.Workers)
	if err != nil {
		return SimulateSummary{}, err
	}
	if req.Seed != 0 {
		exp.Seed(req.Seed)
	}
	if err := exp.SimulateData(req.Noise); err != nil {
		return SimulateSummary{}, err
	}

	sessionID := uuid.NewString()
	if err := c.persistSession(ctx, sessionID, req.Model, req.Cutoff, exp, 0); err != nil {
		return SimulateSummary{}, err
	}

	return SimulateSummary{
		SessionID: sessionID,
		Q:         append([]float64(nil), dataset.X...),
		Intensity: append([]float64(nil), dataset.Intensity...),
	}, nil
}

// Sessions lists persisted sessions sorted by id.
func (c *Client) Sessions(ctx context.Context, limit int) ([]SessionItem, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	ids, err := c.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]SessionItem, 0, len(ids))
	for _, id := range ids {
		session, ok, err := c.store.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, SessionItem{
			SessionID:    session.ID,
			Model:        session.Model,
			CreatedAtUTC: session.CreatedAtUTC,
			NLLF:         session.NLLF,
		})
	}
	return out, nil
}

// SessionParameters returns the flat parameter table of a session in
// natural sort order, polydispersity satellites included.
func (c *Client) SessionParameters(ctx context.Context, sessionID string) ([]ParameterValue, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	session, ok, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	names := make([]string, 0, len(session.Parameters))
	for name := range session.Parameters {
		names = append(names, name)
	}
	natsort.Sort(names)

	out := make([]ParameterValue, 0, len(names))
	for _, name := range names {
		out = append(out, ParameterValue{Name: name, Value: session.Parameters[name]})
	}
	return out, nil
}

// Theory returns the persisted theory table of a session.
func (c *Client) Theory(ctx context.Context, sessionID string) (TheoryTable, error) {
	if sessionID == "" {
		return TheoryTable{}, errors.New("session id is required")
	}
	if err := c.Init(ctx); err != nil {
		return TheoryTable{}, err
	}
	theory, ok, err := c.store.GetTheory(ctx, sessionID)
	if err != nil {
		return TheoryTable{}, err
	}
	if !ok {
		return TheoryTable{}, fmt.Errorf("theory not found for session: %s", sessionID)
	}
	return TheoryTable{SessionID: sessionID, X: theory.X, Theory: theory.Theory}, nil
}

// NLLFHistory returns the objective trace recorded during a fit.
func (c *Client) NLLFHistory(ctx context.Context, sessionID string) ([]float64, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetNLLFHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("nllf history not found for session: %s", sessionID)
	}
	return history, nil
}

// effectiveCutoff maps the request field to the evaluator cutoff:
// zero means unset and takes the default, negative asks for the exact
// no-cutoff evaluation.
func effectiveCutoff(v float64) float64 {
	switch {
	case v == 0:
		return defaultCutoff
	case v < 0:
		return 0
	default:
		return v
	}
}

func (c *Client) buildExperiment(modelName string, params map[string]float64, pdTypes map[string]string, dataset *data.Dataset, cutoff float64, workers int) (*fit.Experiment, error) {
	kernel, err := shape.Resolve(modelName)
	if err != nil {
		return nil, err
	}
	set, err := fit.NewParameterSet(kernel.Info(), params, pdTypes)
	if err != nil {
		return nil, err
	}
	return fit.NewExperiment(kernel, set, dataset, cutoff, workers)
}

func (c *Client) persistSession(ctx context.Context, sessionID, modelName string, cutoff float64, exp *fit.Experiment, nllf float64) error {
	values, types := exp.Params().State()
	session := model.SessionRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           sessionID,
		Model:        modelName,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Cutoff:       cutoff,
		Parameters:   values,
		PDTypes:      types,
		NLLF:         nllf,
	}
	if err := c.store.SaveSession(ctx, session); err != nil {
		return err
	}

	curve, err := exp.Theory()
	if err != nil {
		return err
	}
	theory := model.TheoryRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		SessionID: sessionID,
		X:         append([]float64(nil), curve.Q...),
		Theory:    append([]float64(nil), curve.Iq...),
	}
	return c.store.SaveTheory(ctx, theory)
}
