package config

import "math"

// Preset returns a named ready-to-run configuration, or nil for an
// unknown name.
func Preset(name string) *Config {
	switch name {
	case "two_state_toy":
		return &Config{
			System: "two_state_toy",
			Engine: EngineConfig{
				Dt:          DefaultDt,
				Temperature: DefaultTemperature,
				Gamma:       DefaultGamma,
				MaxFrames:   DefaultMaxFrames,
			},
			CV: "x",
			States: []StateConfig{
				{Name: "A", Min: math.Inf(-1), Max: -0.6},
				{Name: "B", Min: 0.6, Max: math.Inf(1)},
			},
			Scheme: SchemeConfig{Shooting: 1.0, Reversal: 0.5},
			Run: RunConfig{
				Steps:            100,
				SaveEvery:        DefaultSaveEvery,
				BootstrapRetries: DefaultRetries,
				MaxDecorrSteps:   DefaultDecorrSteps,
			},
			Committor: CommittorConfig{Shots: 10, Beta: DefaultBeta},
		}
	case "mstis_toy":
		return &Config{
			System: "mstis_toy",
			Engine: EngineConfig{
				Dt:          DefaultDt,
				Temperature: DefaultTemperature,
				Gamma:       DefaultGamma,
				MaxFrames:   DefaultMaxFrames,
			},
			CV: "x",
			States: []StateConfig{
				{Name: "A", Min: math.Inf(-1), Max: -0.6},
				{Name: "B", Min: 0.6, Max: math.Inf(1)},
			},
			Interfaces: map[string][]float64{
				"A": {-0.6, -0.45, -0.3},
				"B": {0.6, 0.45, 0.3},
			},
			Scheme: SchemeConfig{Shooting: 1.0, Repex: 0.5},
			Run: RunConfig{
				Steps:            200,
				SaveEvery:        DefaultSaveEvery,
				BootstrapRetries: DefaultRetries,
				MaxDecorrSteps:   DefaultDecorrSteps,
			},
			Committor: CommittorConfig{Shots: 10, Beta: DefaultBeta},
		}
	}
	return nil
}

// PresetNames lists the available presets.
func PresetNames() []string {
	return []string{"two_state_toy", "mstis_toy"}
}
