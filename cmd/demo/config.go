package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/michaelfranz/springai-actions-go/prompt"
)

// demoConfig is the static, file-based configuration for the demo's
// persona and model tier selection, loaded once at startup.
type demoConfig struct {
	Persona struct {
		Role        string   `yaml:"role"`
		Principles  []string `yaml:"principles"`
		Constraints []string `yaml:"constraints"`
	} `yaml:"persona"`
	Tiers struct {
		Primary  string `yaml:"primary"`
		Fallback string `yaml:"fallback"`
	} `yaml:"tiers"`
}

// defaultConfig is used when no config file is present, so the demo runs
// out of the box.
func defaultConfig() demoConfig {
	var cfg demoConfig
	cfg.Persona.Role = "basket assistant"
	cfg.Persona.Principles = []string{"prefer the smallest plan that satisfies the request"}
	cfg.Persona.Constraints = []string{"never invent a product name or quantity the user did not state"}
	cfg.Tiers.Primary = "claude-sonnet-4-5"
	cfg.Tiers.Fallback = "gpt-4o"
	return cfg
}

// loadConfig reads path as YAML, falling back to defaultConfig when path
// does not exist.
func loadConfig(path string) (demoConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	if err != nil {
		return demoConfig{}, fmt.Errorf("demo: reading config %q: %w", path, err)
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return demoConfig{}, fmt.Errorf("demo: parsing config %q: %w", path, err)
	}
	return cfg, nil
}

func (c demoConfig) persona() prompt.Persona {
	return prompt.Persona{
		Role:        c.Persona.Role,
		Principles:  c.Persona.Principles,
		Constraints: c.Persona.Constraints,
	}
}
