package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFitJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	payload := `
model    = "cylinder"
data     = "measurement.dat"
fit      = ["radius", "length", "scale"]
method   = "nelder-mead"
max_iter = 200
cutoff   = 1e-5
workers  = 2

[parameters]
radius    = 25.0
radius_pd = 0.15

[pd_types]
radius_pd_type = "lognormal"
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}

	job, err := loadFitJob(path)
	if err != nil {
		t.Fatalf("load fit job: %v", err)
	}
	if job.Model != "cylinder" || job.Data != "measurement.dat" {
		t.Fatalf("unexpected base fields: %+v", job)
	}
	if len(job.Fit) != 3 || job.Fit[1] != "length" {
		t.Fatalf("unexpected fit names: %+v", job.Fit)
	}
	if job.Parameters["radius_pd"] != 0.15 {
		t.Fatalf("unexpected parameters: %+v", job.Parameters)
	}
	if job.PDTypes["radius_pd_type"] != "lognormal" {
		t.Fatalf("unexpected pd types: %+v", job.PDTypes)
	}

	req := job.request()
	if req.MaxIter != 200 || req.Workers != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestLoadFitJobMissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	if err := os.WriteFile(path, []byte(`data = "x.dat"`), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}
	if _, err := loadFitJob(path); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestParamFlagsSet(t *testing.T) {
	p := paramFlags{}
	if err := p.Set("radius=42.5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := p.Set("sld = 1e-6"); err != nil {
		t.Fatalf("set with spaces: %v", err)
	}
	if p["radius"] != 42.5 || p["sld"] != 1e-6 {
		t.Fatalf("unexpected overrides: %+v", p)
	}
	if err := p.Set("radius"); err == nil {
		t.Fatal("expected error for missing value")
	}
	if err := p.Set("radius=abc"); err == nil {
		t.Fatal("expected error for bad number")
	}
}

func TestSplitNames(t *testing.T) {
	got := splitNames(" radius, length ,scale,")
	if len(got) != 3 || got[0] != "radius" || got[2] != "scale" {
		t.Fatalf("unexpected names: %+v", got)
	}
	if splitNames("") != nil {
		t.Fatal("expected nil for empty input")
	}
}
