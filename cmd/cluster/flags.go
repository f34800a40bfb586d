package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/cluster/internal/config"
)

// configFlags are the run parameters settable on the command line. Values
// given explicitly win over the config file, which wins over the preset.
type configFlags struct {
	configFile   string
	preset       string
	n            int
	dim          int
	radius       float64
	meanMass     float64
	startTime    float64
	duration     float64
	dt           float64
	saveEach     int
	autoSaveEach bool
	epsilon      float64
	noSmooth     bool
	method       string
	massSeed     uint64
	positionSeed uint64
	saveFile     string
}

func (f *configFlags) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVar(&f.configFile, "config", "", "config file path (yaml or ini)")
	fs.StringVar(&f.preset, "preset", "", "use preset configuration")
	fs.IntVar(&f.n, "n", d.N, "number of particles")
	fs.IntVar(&f.dim, "dim", d.Dim, "spatial dimension")
	fs.Float64Var(&f.radius, "r0", d.Radius, "initial cluster radius")
	fs.Float64Var(&f.meanMass, "mean-mass", d.MeanMass, "mean particle mass")
	fs.Float64Var(&f.startTime, "t0", d.StartTime, "start time")
	fs.Float64Var(&f.duration, "time", d.Duration, "duration")
	fs.Float64Var(&f.dt, "dt", d.Dt, "timestep")
	fs.IntVar(&f.saveEach, "save-each", d.SaveEach, "save every k-th step")
	fs.BoolVar(&f.autoSaveEach, "auto-save-each", false, "pick save-each so saved states are about 0.01 apart")
	fs.Float64Var(&f.epsilon, "epsilon", d.Epsilon, "softening length")
	fs.BoolVar(&f.noSmooth, "no-smooth", false, "disable softening")
	fs.StringVar(&f.method, "method", d.Method, "integration method")
	fs.Uint64Var(&f.massSeed, "mass-seed", d.MassSeed, "seed of the mass stream")
	fs.Uint64Var(&f.positionSeed, "position-seed", d.PositionSeed, "seed of the position stream")
	fs.StringVar(&f.saveFile, "savefile", "", "snapshot file path")
}

func (f *configFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	fs := cmd.Flags()
	if fs.Changed("n") {
		cfg.N = f.n
	}
	if fs.Changed("dim") {
		cfg.Dim = f.dim
	}
	if fs.Changed("r0") {
		cfg.Radius = f.radius
	}
	if fs.Changed("mean-mass") {
		cfg.MeanMass = f.meanMass
	}
	if fs.Changed("t0") {
		cfg.StartTime = f.startTime
	}
	if fs.Changed("time") {
		cfg.Duration = f.duration
	}
	if fs.Changed("dt") {
		cfg.Dt = f.dt
	}
	if fs.Changed("save-each") {
		cfg.SaveEach = f.saveEach
	}
	if f.autoSaveEach {
		cfg.SaveEach = config.SaveEachFor(cfg.Dt)
	}
	if fs.Changed("epsilon") {
		cfg.Epsilon = f.epsilon
	}
	if fs.Changed("no-smooth") {
		cfg.NoSmooth = f.noSmooth
	}
	if fs.Changed("method") {
		cfg.Method = f.method
	}
	if fs.Changed("mass-seed") {
		cfg.MassSeed = f.massSeed
	}
	if fs.Changed("position-seed") {
		cfg.PositionSeed = f.positionSeed
	}
	if fs.Changed("savefile") {
		cfg.SaveFile = f.saveFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
