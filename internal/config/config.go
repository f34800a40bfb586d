package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultN            = 100
	DefaultDim          = 3
	DefaultRadius       = 20.0
	DefaultMeanMass     = 10.0
	DefaultDuration     = 2.0
	DefaultDt           = 0.01
	DefaultSaveEach     = 1
	DefaultEpsilon      = 0.15
	DefaultMethod       = "rk4"
	DefaultMassSeed     = 1
	DefaultPositionSeed = 2

	// targetSaveDt is the spacing of saved states SaveEachFor aims for.
	targetSaveDt = 0.01
)

// Config describes one cluster run.
type Config struct {
	N            int     `yaml:"n"`
	Dim          int     `yaml:"dim"`
	Radius       float64 `yaml:"r0"`
	MeanMass     float64 `yaml:"mean_mass"`
	StartTime    float64 `yaml:"t0"`
	Duration     float64 `yaml:"duration"`
	Dt           float64 `yaml:"dt"`
	SaveEach     int     `yaml:"save_each"`
	Epsilon      float64 `yaml:"epsilon"`
	NoSmooth     bool    `yaml:"no_smooth"`
	Method       string  `yaml:"method"`
	MassSeed     uint64  `yaml:"mass_seed"`
	PositionSeed uint64  `yaml:"position_seed"`
	SaveFile     string  `yaml:"savefile,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		N:            DefaultN,
		Dim:          DefaultDim,
		Radius:       DefaultRadius,
		MeanMass:     DefaultMeanMass,
		Duration:     DefaultDuration,
		Dt:           DefaultDt,
		SaveEach:     DefaultSaveEach,
		Epsilon:      DefaultEpsilon,
		Method:       DefaultMethod,
		MassSeed:     DefaultMassSeed,
		PositionSeed: DefaultPositionSeed,
	}
}

// Softening is the ε the ensemble uses: Epsilon, or zero with NoSmooth.
func (c *Config) Softening() float64 {
	if c.NoSmooth {
		return 0
	}
	return c.Epsilon
}

// Steps is the number of advances a run performs: every i with i·dt ≤ T.
func (c *Config) Steps() int {
	if !(c.Dt > 0) {
		return 0
	}
	n := 0
	for i := 0; float64(i)*c.Dt <= c.Duration; i++ {
		n++
	}
	return n
}

// DefaultSaveFile names the snapshot file after the run parameters.
func (c *Config) DefaultSaveFile() string {
	return fmt.Sprintf("%s_N%d_dt%g_T%g_epsilon%g_saveEach%d.dat",
		c.Method, c.N, c.Dt, c.Duration, c.Softening(), c.SaveEach)
}

// SaveEachFor returns the cadence that keeps saved states about 0.01 time
// units apart: 1 for dt ≥ 0.01, 10 for dt = 0.001 and so on.
func SaveEachFor(dt float64) int {
	se := 1
	for counter := dt; counter < targetSaveDt && se < 1e9; counter *= 10 {
		se *= 10
	}
	return se
}

func (c *Config) Validate() error {
	switch {
	case c.N <= 0:
		return fmt.Errorf("n must be positive, got %d", c.N)
	case c.Dim <= 0:
		return fmt.Errorf("dim must be positive, got %d", c.Dim)
	case !(c.Radius > 0):
		return fmt.Errorf("r0 must be positive, got %g", c.Radius)
	case !(c.MeanMass > 0):
		return fmt.Errorf("mean_mass must be positive, got %g", c.MeanMass)
	case !(c.Dt > 0) || math.IsInf(c.Dt, 0):
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	case !(c.Duration >= 0) || math.IsInf(c.Duration, 0):
		return fmt.Errorf("duration must be non-negative, got %g", c.Duration)
	case c.SaveEach < 1:
		return fmt.Errorf("save_each must be at least 1, got %d", c.SaveEach)
	case !(c.Epsilon >= 0):
		return fmt.Errorf("epsilon must be non-negative, got %g", c.Epsilon)
	case !KnownMethod(c.Method):
		return fmt.Errorf("unknown method %q (available: %s)", c.Method, strings.Join(Methods(), ", "))
	}
	return nil
}

// Methods lists the accepted integration method names.
func Methods() []string {
	return []string{"rk4", "leapfrog", "lf", "euler"}
}

func KnownMethod(name string) bool {
	for _, m := range Methods() {
		if m == name {
			return true
		}
	}
	return false
}

// Load reads a config file on top of the defaults. Files ending in .ini,
// .gcfg or .cfg are parsed as INI with a [cluster] section, anything else as
// YAML.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg", ".cfg":
		return loadINI(path)
	default:
		return loadYAML(path)
	}
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// iniFile mirrors Config for gcfg, which does not accept underscores in
// variable names.
type iniFile struct {
	Cluster struct {
		N            int
		Dim          int
		R0           float64
		MeanMass     float64 `gcfg:"mean-mass"`
		T0           float64
		Duration     float64
		Dt           float64
		SaveEach     int `gcfg:"save-each"`
		Epsilon      float64
		NoSmooth     bool `gcfg:"no-smooth"`
		Method       string
		MassSeed     int64 `gcfg:"mass-seed"`
		PositionSeed int64 `gcfg:"position-seed"`
		SaveFile     string
	}
}

func loadINI(path string) (*Config, error) {
	def := DefaultConfig()

	var f iniFile
	c := &f.Cluster
	c.N, c.Dim, c.R0, c.MeanMass = def.N, def.Dim, def.Radius, def.MeanMass
	c.Duration, c.Dt, c.SaveEach = def.Duration, def.Dt, def.SaveEach
	c.Epsilon, c.Method = def.Epsilon, def.Method
	c.MassSeed, c.PositionSeed = int64(def.MassSeed), int64(def.PositionSeed)

	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.MassSeed < 0 || c.PositionSeed < 0 {
		return nil, fmt.Errorf("parse %s: seeds must be non-negative", path)
	}

	return &Config{
		N:            c.N,
		Dim:          c.Dim,
		Radius:       c.R0,
		MeanMass:     c.MeanMass,
		StartTime:    c.T0,
		Duration:     c.Duration,
		Dt:           c.Dt,
		SaveEach:     c.SaveEach,
		Epsilon:      c.Epsilon,
		NoSmooth:     c.NoSmooth,
		Method:       c.Method,
		MassSeed:     uint64(c.MassSeed),
		PositionSeed: uint64(c.PositionSeed),
		SaveFile:     c.SaveFile,
	}, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
