// Package config loads planning scenarios from YAML files and named presets.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRobot    = "monoped"
	DefaultDuration = 1.0
	DefaultDtDyn    = 0.1
	DefaultDtCon    = 0.08
	DefaultForceMax = 1000.0
	DefaultMinPhase = 0.1
)

type Config struct {
	Robot             string      `yaml:"robot"`
	Duration          float64     `yaml:"duration"`
	StartHeight       float64     `yaml:"start_height"`
	GoalPos           [3]float64  `yaml:"goal_pos"`
	GoalYaw           float64     `yaml:"goal_yaw"`
	PhaseDurations    [][]float64 `yaml:"phase_durations"`
	FirstPhaseContact []bool      `yaml:"first_phase_contact"`
	OptimizeDurations bool        `yaml:"optimize_durations"`
	DtDynamic         float64     `yaml:"dt_dynamic"`
	DtConstraint      float64     `yaml:"dt_constraint"`
	ForceLimit        float64     `yaml:"force_limit"`
	MinPhaseDuration  float64     `yaml:"min_phase_duration"`
	Constraints       []string    `yaml:"constraints"`
	Costs             []Cost      `yaml:"costs"`
	Solver            Solver      `yaml:"solver"`
}

type Cost struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

type Solver struct {
	MaxEval       int     `yaml:"max_eval"`
	FtolRel       float64 `yaml:"ftol_rel"`
	XtolRel       float64 `yaml:"xtol_rel"`
	ConstraintTol float64 `yaml:"constraint_tol"`
}

func DefaultConfig() *Config {
	return &Config{
		Robot:            DefaultRobot,
		Duration:         DefaultDuration,
		StartHeight:      0.58,
		GoalPos:          [3]float64{0.5, 0, 0.58},
		DtDynamic:        DefaultDtDyn,
		DtConstraint:     DefaultDtCon,
		ForceLimit:       DefaultForceMax,
		MinPhaseDuration: DefaultMinPhase,
		Solver: Solver{
			MaxEval:       3000,
			FtolRel:       1e-6,
			XtolRel:       1e-6,
			ConstraintTol: 1e-5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
