package geostat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params collects the tunable parameters of an estimation or simulation run
// in a form that loads from a YAML file.
type Params struct {
	Search struct {
		Radius    float64 `yaml:"radius"`
		MaxPoints int     `yaml:"max_points"`
	} `yaml:"search"`
	Variogram struct {
		NLags          int     `yaml:"n_lags"`
		LagTolerance   float64 `yaml:"lag_tolerance"`
		AngleTolerance float64 `yaml:"angle_tolerance"`
	} `yaml:"variogram"`
	Block struct {
		Discretization int `yaml:"discretization"`
	} `yaml:"block"`
	Simulation struct {
		Realizations int   `yaml:"realizations"`
		Seed         int64 `yaml:"seed"`
		MaxPoints    int   `yaml:"max_points"`
	} `yaml:"simulation"`
}

// DefaultParams returns the parameter set used when no file is given.
func DefaultParams() Params {
	var p Params
	p.Variogram.NLags = 10
	p.Variogram.LagTolerance = 0.5
	p.Variogram.AngleTolerance = 22.5
	p.Block.Discretization = 4
	p.Simulation.Realizations = 100
	p.Simulation.Seed = 1
	p.Simulation.MaxPoints = 32
	return p
}

// LoadParams reads a YAML parameter file, filling unset fields from
// DefaultParams.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading params: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing params: %w", err)
	}
	if err := p.validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Params) validate() error {
	if err := validateCount(p.Variogram.NLags, "n_lags"); err != nil {
		return err
	}
	if err := validateRange(p.Variogram.LagTolerance, 0, 1, "lag_tolerance"); err != nil {
		return err
	}
	if err := validateRange(p.Variogram.AngleTolerance, 0, 90, "angle_tolerance"); err != nil {
		return err
	}
	if err := validateCount(p.Block.Discretization, "discretization"); err != nil {
		return err
	}
	if err := validateCount(p.Simulation.Realizations, "realizations"); err != nil {
		return err
	}
	if p.Search.Radius < 0 {
		return fmt.Errorf("%w: \"radius\" must not be negative, got %v", ErrInvalidParameter, p.Search.Radius)
	}
	if p.Search.MaxPoints < 0 {
		return fmt.Errorf("%w: \"max_points\" must not be negative, got %d", ErrInvalidParameter, p.Search.MaxPoints)
	}
	return nil
}

// EstimationOptions converts the parameter set to kriging options.
func (p Params) EstimationOptions() EstimationOptions {
	return EstimationOptions{
		Search: SearchOptions{Radius: p.Search.Radius, MaxPoints: p.Search.MaxPoints},
	}
}

// BinOptions converts the parameter set to experimental variogram binning
// options.
func (p Params) BinOptions() BinOptions {
	return BinOptions{NLags: p.Variogram.NLags, LagTol: p.Variogram.LagTolerance}
}

// SimulationOptions converts the parameter set to sequential simulation
// options.
func (p Params) SimulationOptions() SimulationOptions {
	return SimulationOptions{
		Search: SearchOptions{Radius: p.Search.Radius, MaxPoints: p.Simulation.MaxPoints},
	}
}
