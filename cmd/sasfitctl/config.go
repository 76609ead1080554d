package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	sasapi "sasfit/pkg/sasfit"
)

// fitJob is the TOML layout of a batch fit description. Example:
//
//	model  = "cylinder"
//	data   = "measurement.dat"
//	fit    = ["radius", "length", "scale"]
//	method = "nelder-mead"
//
//	[parameters]
//	radius    = 25.0
//	radius_pd = 0.15
//
//	[pd_types]
//	radius_pd_type = "lognormal"
type fitJob struct {
	Model      string             `toml:"model"`
	Data       string             `toml:"data"`
	Fit        []string           `toml:"fit"`
	Method     string             `toml:"method"`
	MaxIter    int                `toml:"max_iter"`
	Cutoff     float64            `toml:"cutoff"`
	Workers    int                `toml:"workers"`
	Parameters map[string]float64 `toml:"parameters"`
	PDTypes    map[string]string  `toml:"pd_types"`
}

func loadFitJob(path string) (fitJob, error) {
	var job fitJob
	if _, err := toml.DecodeFile(path, &job); err != nil {
		return fitJob{}, fmt.Errorf("load fit job %s: %w", path, err)
	}
	if job.Model == "" {
		return fitJob{}, fmt.Errorf("fit job %s: model is required", path)
	}
	if job.Data == "" {
		return fitJob{}, fmt.Errorf("fit job %s: data is required", path)
	}
	return job, nil
}

func (j fitJob) request() sasapi.FitRequest {
	return sasapi.FitRequest{
		Model:      j.Model,
		DataPath:   j.Data,
		Parameters: j.Parameters,
		PDTypes:    j.PDTypes,
		Fit:        j.Fit,
		Method:     j.Method,
		MaxIter:    j.MaxIter,
		Cutoff:     j.Cutoff,
		Workers:    j.Workers,
	}
}
