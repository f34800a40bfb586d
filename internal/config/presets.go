package config

import "sort"

var Presets = map[string]*Config{
	"small": {
		N: 20, Dim: 3, Radius: 20, MeanMass: 10, Duration: 2, Dt: 0.01,
		SaveEach: 1, Epsilon: 0.15, Method: "rk4", MassSeed: 1, PositionSeed: 2,
	},
	"default": DefaultConfig(),
	"collapse": {
		N: 500, Dim: 3, Radius: 20, MeanMass: 10, Duration: 5, Dt: 0.001,
		SaveEach: 10, Epsilon: 0.15, Method: "leapfrog", MassSeed: 1, PositionSeed: 2,
	},
	"binary": {
		N: 2, Dim: 3, Radius: 1, MeanMass: 10, Duration: 10, Dt: 0.001,
		SaveEach: 10, Epsilon: 0, NoSmooth: true, Method: "leapfrog", MassSeed: 3, PositionSeed: 4,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
