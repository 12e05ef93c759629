package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 0.02
	DefaultTemperature = 0.1
	DefaultGamma       = 2.5
	DefaultMaxFrames   = 5000
	DefaultBeta        = 10.0
	DefaultSaveEvery   = 1
	DefaultRetries     = 20
	DefaultDecorrSteps = 10000
)

type Config struct {
	System     string               `yaml:"system"`
	Engine     EngineConfig         `yaml:"engine"`
	CV         string               `yaml:"cv"`
	States     []StateConfig        `yaml:"states"`
	Interfaces map[string][]float64 `yaml:"interfaces"`
	Scheme     SchemeConfig         `yaml:"scheme"`
	Run        RunConfig            `yaml:"run"`
	Committor  CommittorConfig      `yaml:"committor"`
}

type EngineConfig struct {
	Dt          float64 `yaml:"dt"`
	Temperature float64 `yaml:"temperature"`
	Gamma       float64 `yaml:"gamma"`
	MaxFrames   int     `yaml:"max_frames"`
	Seed        int64   `yaml:"seed"`
}

// StateConfig bounds one stable state along the collective variable.
// YAML's .inf / -.inf literals express half-open states.
type StateConfig struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

type SchemeConfig struct {
	Shooting float64 `yaml:"shooting"`
	Reversal float64 `yaml:"reversal"`
	Repex    float64 `yaml:"repex"`
}

type RunConfig struct {
	Steps            int   `yaml:"steps"`
	SaveEvery        int   `yaml:"save_every"`
	Seed             int64 `yaml:"seed"`
	BootstrapRetries int   `yaml:"bootstrap_retries"`
	MaxDecorrSteps   int   `yaml:"max_decorrelation_steps"`
}

type CommittorConfig struct {
	Shots int     `yaml:"shots"`
	Beta  float64 `yaml:"beta"`
}

func DefaultConfig() *Config {
	return Preset("two_state_toy")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
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

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Validate() error {
	if c.Engine.Dt <= 0 {
		return fmt.Errorf("engine dt must be positive, got %v", c.Engine.Dt)
	}
	if c.Engine.MaxFrames < 2 {
		return fmt.Errorf("engine max_frames must be at least 2, got %d", c.Engine.MaxFrames)
	}
	if len(c.States) < 2 {
		return fmt.Errorf("need at least two states, got %d", len(c.States))
	}
	if c.CV != "x" && c.CV != "y" {
		return fmt.Errorf("cv must be x or y, got %q", c.CV)
	}

	names := make(map[string]bool, len(c.States))
	for _, s := range c.States {
		if s.Name == "" {
			return fmt.Errorf("state without a name")
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate state %q", s.Name)
		}
		names[s.Name] = true
		if s.Min >= s.Max {
			return fmt.Errorf("state %q has empty range [%v,%v)", s.Name, s.Min, s.Max)
		}
	}

	for state, lambdas := range c.Interfaces {
		if !names[state] {
			return fmt.Errorf("interfaces reference unknown state %q", state)
		}
		if len(lambdas) == 0 {
			return fmt.Errorf("state %q has an empty interface list", state)
		}
		// Positions run outward from the state boundary: strictly
		// monotonic in either direction along the CV.
		if !monotonic(lambdas) {
			return fmt.Errorf("interfaces of state %q are not monotonic", state)
		}
	}

	if c.Scheme.Shooting <= 0 {
		return fmt.Errorf("scheme needs a positive shooting weight")
	}
	return nil
}

// MSTIS reports whether the config describes an interface-sampling
// network rather than plain TPS.
func (c *Config) MSTIS() bool { return len(c.Interfaces) > 0 }

func monotonic(xs []float64) bool {
	if len(xs) < 2 {
		return true
	}
	increasing := xs[1] > xs[0]
	for i := 1; i < len(xs); i++ {
		if increasing && xs[i] <= xs[i-1] {
			return false
		}
		if !increasing && xs[i] >= xs[i-1] {
			return false
		}
	}
	return true
}
