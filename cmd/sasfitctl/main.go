package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"

	"sasfit/internal/storage"
	sasapi "sasfit/pkg/sasfit"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "models":
		return runModels(ctx, args[1:])
	case "fit":
		return runFit(ctx, args[1:])
	case "simulate":
		return runSimulate(ctx, args[1:])
	case "sessions":
		return runSessions(ctx, args[1:])
	case "params":
		return runParams(ctx, args[1:])
	case "theory":
		return runTheory(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runModels(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sasapi.New(sasapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	models, err := client.Models(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		fmt.Printf("%-24s %-40s params=%d\n", m.Name, m.Title, m.Parameters)
	}
	return nil
}

func runFit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	jobPath := fs.String("job", "", "TOML job file (overrides the other fit flags)")
	modelName := fs.String("model", "", "model name")
	dataPath := fs.String("data", "", "ascii data file (q, intensity, uncertainty)")
	fitNames := fs.String("fit", "", "comma-separated parameter names to adjust")
	method := fs.String("method", "", "optimizer: nelder-mead|bfgs|lbfgs|gradient")
	maxIter := fs.Int("max-iter", 0, "optimizer iteration limit (0 = library default)")
	cutoff := fs.Float64("cutoff", 0, "polydispersity weight cutoff")
	workers := fs.Int("workers", 0, "evaluation workers")
	params := paramFlags{}
	fs.Var(params, "set", "parameter override name=value (repeatable)")
	pdTypes := stringFlags{}
	fs.Var(pdTypes, "pd-type", "distribution override name_pd_type=kind (repeatable)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "sasfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req sasapi.FitRequest
	if *jobPath != "" {
		job, err := loadFitJob(*jobPath)
		if err != nil {
			return err
		}
		req = job.request()
	} else {
		req = sasapi.FitRequest{
			Model:      *modelName,
			DataPath:   *dataPath,
			Parameters: params,
			PDTypes:    pdTypes,
			Fit:        splitNames(*fitNames),
			Method:     *method,
			MaxIter:    *maxIter,
			Cutoff:     *cutoff,
			Workers:    *workers,
		}
	}

	client, err := sasapi.New(sasapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	started := time.Now()
	summary, err := client.Fit(ctx, req)
	if err != nil {
		return err
	}
	slog.Info("fit finished",
		"session", summary.SessionID,
		"nllf", summary.NLLF,
		"evals", humanize.Comma(int64(summary.FuncEvals)),
		"points", humanize.Comma(int64(summary.Points)),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	for name, value := range summary.Values {
		fmt.Printf("%-24s %.6g\n", name, value)
	}
	fmt.Printf("session=%s nllf=%.6g\n", summary.SessionID, summary.NLLF)
	return nil
}

func runSimulate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	modelName := fs.String("model", "", "model name")
	qmin := fs.Float64("qmin", 0, "lower q bound (1/Ang)")
	qmax := fs.Float64("qmax", 0, "upper q bound (1/Ang)")
	points := fs.Int("points", 0, "number of q samples")
	noise := fs.Float64("noise", 0, "relative noise in percent")
	seed := fs.Int64("seed", 0, "noise seed (0 = fixed default)")
	cutoff := fs.Float64("cutoff", 0, "polydispersity weight cutoff")
	workers := fs.Int("workers", 0, "evaluation workers")
	out := fs.String("out", "", "write the simulated curve to this file")
	params := paramFlags{}
	fs.Var(params, "set", "parameter override name=value (repeatable)")
	pdTypes := stringFlags{}
	fs.Var(pdTypes, "pd-type", "distribution override name_pd_type=kind (repeatable)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "sasfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sasapi.New(sasapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Simulate(ctx, sasapi.SimulateRequest{
		Model:      *modelName,
		Parameters: params,
		PDTypes:    pdTypes,
		QMin:       *qmin,
		QMax:       *qmax,
		Points:     *points,
		Noise:      *noise,
		Seed:       *seed,
		Cutoff:     *cutoff,
		Workers:    *workers,
	})
	if err != nil {
		return err
	}
	slog.Info("simulation finished",
		"session", summary.SessionID,
		"points", humanize.Comma(int64(len(summary.Q))),
	)

	if *out != "" {
		return writeCurve(*out, summary.Q, summary.Intensity)
	}
	for i := range summary.Q {
		fmt.Printf("%.9e %.9e\n", summary.Q[i], summary.Intensity[i])
	}
	return nil
}

func runSessions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum sessions to list")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "sasfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sasapi.New(sasapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	sessions, err := client.Sessions(ctx, *limit)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%-36s %-24s %-28s nllf=%.6g\n", s.SessionID, s.Model, s.CreatedAtUTC, s.NLLF)
	}
	return nil
}

func runParams(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	sessionID := fs.String("session", "", "session id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "sasfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sasapi.New(sasapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	values, err := client.SessionParameters(ctx, *sessionID)
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Printf("%-24s %.6g\n", v.Name, v.Value)
	}
	return nil
}

func runTheory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("theory", flag.ContinueOnError)
	sessionID := fs.String("session", "", "session id")
	out := fs.String("out", "", "write the theory curve to this file")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "sasfit.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sasapi.New(sasapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	table, err := client.Theory(ctx, *sessionID)
	if err != nil {
		return err
	}
	if *out != "" {
		return writeCurve(*out, table.X, table.Theory)
	}
	for i := range table.X {
		fmt.Printf("%.9e %.9e\n", table.X[i], table.Theory[i])
	}
	return nil
}

func writeCurve(path string, x, y []float64) error {
	var b strings.Builder
	for i := range x {
		fmt.Fprintf(&b, "%.9e %.9e\n", x[i], y[i])
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// paramFlags collects repeated -set name=value overrides.
type paramFlags map[string]float64

func (p paramFlags) String() string {
	return fmt.Sprintf("%d overrides", len(p))
}

func (p paramFlags) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parse %q: %w", s, err)
	}
	p[strings.TrimSpace(name)] = value
	return nil
}

// stringFlags collects repeated -pd-type name=kind overrides.
type stringFlags map[string]string

func (p stringFlags) String() string {
	return fmt.Sprintf("%d overrides", len(p))
}

func (p stringFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected name=kind, got %q", s)
	}
	p[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

func usageError(msg string) error {
	return errors.New(msg + `

usage: sasfitctl <command> [flags]

commands:
  models     list registered scattering models
  fit        fit model parameters against measured data
  simulate   evaluate a model on a synthetic q grid
  sessions   list persisted fit sessions
  params     show the parameter table of a session
  theory     show or export the theory curve of a session`)
}
