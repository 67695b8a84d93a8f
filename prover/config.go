package prover

import (
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config bounds a proof search. Zero limits mean unbounded.
type Config struct {
	// MaxSteps caps the number of states a single proof may create
	MaxSteps int `yaml:"maxSteps"`
	// MaxInstantiations caps quantifier instantiations per proof
	MaxInstantiations int `yaml:"maxInstantiations"`
	// MaxSplitDepth caps how many disjunctions may be split on one branch
	MaxSplitDepth int `yaml:"maxSplitDepth"`
	// Parallelism is how many assertions are checked at once
	Parallelism int `yaml:"parallelism"`
	// DisabledRules are rule names the search will not use
	DisabledRules []string `yaml:"disabledRules"`
}

func DefaultConfig() Config {
	return Config{
		MaxSteps:          20_000,
		MaxInstantiations: 500,
		MaxSplitDepth:     64,
		Parallelism:       4,
	}
}

func (c Config) Validate() error {
	if c.MaxSteps < 0 || c.MaxInstantiations < 0 || c.MaxSplitDepth < 0 {
		return errors.New("limits must not be negative")
	}
	if c.Parallelism < 1 {
		return errors.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	return nil
}

func (c Config) disabled(rule string) bool {
	return slices.Contains(c.DisabledRules, rule)
}

// ParseConfig decodes a YAML config. Omitted fields keep their default value.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	return cfg, errors.WithMessage(err, path)
}
