package shell

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/junhg0211/lintre/pkg/eval"
)

// Config is the content of the config file.
type Config struct {
	Strategy   string `yaml:"strategy"`
	MaxSteps   int    `yaml:"max-steps"`
	CycleCheck *bool  `yaml:"cycle-check"`
	Trace      string `yaml:"trace"`
}

// LoadConfig reads the config file at path. A missing file is an error only
// if mustExist is true; otherwise it gives an empty Config.
func LoadConfig(path string, mustExist bool) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	defer file.Close()
	logger.Println("loading config file", path)

	var cfg Config
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply configures ev according to cfg, and returns the configured trace
// mode.
func (cfg *Config) Apply(ev *eval.Evaler) (eval.TraceMode, error) {
	if cfg.Strategy != "" {
		strategy, err := eval.ParseStrategy(cfg.Strategy)
		if err != nil {
			return eval.TraceNone, err
		}
		ev.Strategy = strategy
	}
	if cfg.MaxSteps < 0 {
		return eval.TraceNone, fmt.Errorf("invalid max-steps %d, should be positive", cfg.MaxSteps)
	} else if cfg.MaxSteps > 0 {
		ev.Guard.MaxSteps = cfg.MaxSteps
	}
	if cfg.CycleCheck != nil {
		ev.Guard.DetectCycles = *cfg.CycleCheck
	}
	if cfg.Trace == "" {
		return eval.TraceNone, nil
	}
	return eval.ParseTraceMode(cfg.Trace)
}
