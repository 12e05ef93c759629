package config

import (
	"math"
	"testing"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range PresetNames() {
		cfg := Preset(name)
		if cfg == nil {
			t.Fatalf("preset %q missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if Preset("no_such_system") != nil {
		t.Error("unknown preset should return nil")
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("engine:\n  dt: 0.005\nrun:\n  steps: 42\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Engine.Dt != 0.005 {
		t.Errorf("dt = %v, want 0.005", cfg.Engine.Dt)
	}
	if cfg.Run.Steps != 42 {
		t.Errorf("steps = %d, want 42", cfg.Run.Steps)
	}
	// Untouched fields keep preset defaults.
	if cfg.Engine.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want default %v", cfg.Engine.Temperature, DefaultTemperature)
	}
	if len(cfg.States) != 2 {
		t.Errorf("states = %d, want 2", len(cfg.States))
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Engine.Dt = 0 }},
		{"tiny max frames", func(c *Config) { c.Engine.MaxFrames = 1 }},
		{"single state", func(c *Config) { c.States = c.States[:1] }},
		{"bad cv", func(c *Config) { c.CV = "z" }},
		{"unnamed state", func(c *Config) { c.States[0].Name = "" }},
		{"duplicate state", func(c *Config) { c.States[1].Name = c.States[0].Name }},
		{"empty state range", func(c *Config) { c.States[0].Min, c.States[0].Max = 1, 1 }},
		{"unknown interface state", func(c *Config) { c.Interfaces = map[string][]float64{"Z": {0.1}} }},
		{"empty ladder", func(c *Config) { c.Interfaces = map[string][]float64{"A": {}} }},
		{"non-monotonic ladder", func(c *Config) { c.Interfaces = map[string][]float64{"A": {-0.6, -0.3, -0.45}} }},
		{"no shooting weight", func(c *Config) { c.Scheme.Shooting = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Preset("two_state_toy")
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateLadderDirections(t *testing.T) {
	cfg := Preset("mstis_toy")
	// Ladders run outward from each state boundary, so the left state
	// increases and the right state decreases along the CV.
	cfg.Interfaces = map[string][]float64{
		"A": {-0.6, -0.45, -0.3},
		"B": {0.6, 0.45, 0.3},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("opposite-direction ladders should validate: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := Preset("mstis_toy")
	cfg.Run.Seed = 7

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back.Run.Seed != 7 {
		t.Errorf("seed = %d, want 7", back.Run.Seed)
	}
	if len(back.Interfaces["A"]) != 3 || len(back.Interfaces["B"]) != 3 {
		t.Errorf("interfaces lost in round trip: %v", back.Interfaces)
	}
	if !math.IsInf(back.States[0].Min, -1) {
		t.Errorf("infinite state bound lost: %v", back.States[0].Min)
	}
}
