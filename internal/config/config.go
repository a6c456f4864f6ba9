package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tabiya-tech/compass-sub002/internal/posterior"
	"github.com/tabiya-tech/compass-sub002/internal/session"
	"github.com/tabiya-tech/compass-sub002/internal/stopping"
)

// #region config

// Config is the engine configuration file layout.
type Config struct {
	LibraryPath string  `yaml:"library_path"`
	DBPath      string  `yaml:"db_path"`
	Temperature float64 `yaml:"temperature"`
	MaxAdaptive int     `yaml:"max_adaptive"`

	Posterior PosteriorConfig `yaml:"posterior"`
	Stopping  StoppingConfig  `yaml:"stopping"`
}

// PosteriorConfig mirrors posterior.Config with YAML tags.
type PosteriorConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	Ridge         float64 `yaml:"ridge"`
	FallbackStep  float64 `yaml:"fallback_step"`
}

// StoppingConfig mirrors stopping.Config with YAML tags.
type StoppingConfig struct {
	MinVignettes         int     `yaml:"min_vignettes"`
	MaxVignettes         int     `yaml:"max_vignettes"`
	DetThreshold         float64 `yaml:"det_threshold"`
	MaxVarianceThreshold float64 `yaml:"max_variance_threshold"`
	Epsilon              float64 `yaml:"epsilon"`
}

// #endregion config

// #region defaults

// Default returns the deployment defaults.
func Default() Config {
	p := posterior.DefaultConfig()
	s := stopping.DefaultConfig()
	e := session.DefaultConfig()
	return Config{
		LibraryPath: "vignettes.json",
		DBPath:      "elicitation.db",
		Temperature: e.Temperature,
		MaxAdaptive: e.MaxAdaptive,
		Posterior: PosteriorConfig{
			MaxIterations: p.MaxIterations,
			Tolerance:     p.Tolerance,
			Ridge:         p.Ridge,
			FallbackStep:  p.FallbackStep,
		},
		Stopping: StoppingConfig{
			MinVignettes:         s.MinVignettes,
			MaxVignettes:         s.MaxVignettes,
			DetThreshold:         s.DetThreshold,
			MaxVarianceThreshold: s.MaxVarianceThreshold,
			Epsilon:              s.Epsilon,
		},
	}
}

// #endregion defaults

// #region load

// Load reads a YAML config file, layering it over the defaults and the
// environment over both. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ELICIT_LIBRARY"); v != "" {
		c.LibraryPath = v
	}
	if v := os.Getenv("ELICIT_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("ELICIT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = f
		}
	}
	if v := os.Getenv("ELICIT_MAX_ADAPTIVE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAdaptive = n
		}
	}
}

func (c Config) validate() error {
	if c.Temperature <= 0 {
		return fmt.Errorf("config: temperature must be positive, got %f", c.Temperature)
	}
	if c.MaxAdaptive <= 0 {
		return fmt.Errorf("config: max_adaptive must be positive, got %d", c.MaxAdaptive)
	}
	if c.Stopping.MaxVignettes < c.Stopping.MinVignettes {
		return fmt.Errorf("config: max_vignettes %d below min_vignettes %d",
			c.Stopping.MaxVignettes, c.Stopping.MinVignettes)
	}
	return nil
}

// #endregion load

// #region engine-config

// SessionConfig converts the file layout into the orchestrator's config.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		Temperature: c.Temperature,
		MaxAdaptive: c.MaxAdaptive,
		Posterior: posterior.Config{
			MaxIterations: c.Posterior.MaxIterations,
			Tolerance:     c.Posterior.Tolerance,
			Ridge:         c.Posterior.Ridge,
			FallbackStep:  c.Posterior.FallbackStep,
		},
		Stopping: stopping.Config{
			MinVignettes:         c.Stopping.MinVignettes,
			MaxVignettes:         c.Stopping.MaxVignettes,
			DetThreshold:         c.Stopping.DetThreshold,
			MaxVarianceThreshold: c.Stopping.MaxVarianceThreshold,
			Epsilon:              c.Stopping.Epsilon,
		},
	}
}

// #endregion engine-config
