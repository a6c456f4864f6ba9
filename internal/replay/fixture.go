package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tabiya-tech/compass-sub002/internal/session"
	"github.com/tabiya-tech/compass-sub002/internal/stopping"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a vignette
// library, engine parameters, recorded choices, and expected outcomes.
type Fixture struct {
	Description     string            `json:"description"`
	Dimensions      []string          `json:"dimensions"`
	Config          FixtureConfig     `json:"config"`
	Library         vignette.Library  `json:"library"`
	Choices         []FixtureChoice   `json:"choices"`
	ExpectedResults []FixtureExpected `json:"expected_results,omitempty"`
}

// FixtureChoice mirrors RecordedChoice with JSON tags.
type FixtureChoice struct {
	VignetteID   string `json:"vignette_id"`
	ChosenOption string `json:"chosen_option"`
}

// FixtureExpected captures the expected per-choice outcome.
type FixtureExpected struct {
	VignetteID string `json:"vignette_id"`
	Applied    bool   `json:"applied"`
}

// FixtureConfig mirrors the engine parameters with JSON tags.
type FixtureConfig struct {
	Temperature          float64 `json:"temperature"`
	MaxAdaptive          int     `json:"max_adaptive"`
	MinVignettes         int     `json:"min_vignettes"`
	MaxVignettes         int     `json:"max_vignettes"`
	DetThreshold         float64 `json:"det_threshold"`
	MaxVarianceThreshold float64 `json:"max_variance_threshold"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Dimensions) == 0 {
		return nil, fmt.Errorf("fixture %s: missing dimensions", path)
	}
	if len(f.Choices) == 0 {
		return nil, fmt.Errorf("fixture %s: no choices to replay", path)
	}
	return &f, nil
}

// SessionConfig converts the fixture parameters into an orchestrator
// config, using engine defaults for anything unset.
func (f *Fixture) SessionConfig() session.Config {
	cfg := session.DefaultConfig()
	if f.Config.Temperature > 0 {
		cfg.Temperature = f.Config.Temperature
	}
	if f.Config.MaxAdaptive > 0 {
		cfg.MaxAdaptive = f.Config.MaxAdaptive
	}
	stop := stopping.DefaultConfig()
	if f.Config.MaxVignettes > 0 {
		stop.MinVignettes = f.Config.MinVignettes
		stop.MaxVignettes = f.Config.MaxVignettes
	}
	if f.Config.DetThreshold > 0 {
		stop.DetThreshold = f.Config.DetThreshold
	}
	if f.Config.MaxVarianceThreshold > 0 {
		stop.MaxVarianceThreshold = f.Config.MaxVarianceThreshold
	}
	cfg.Stopping = stop
	return cfg
}

// NewOrchestrator builds the orchestrator the fixture describes.
func (f *Fixture) NewOrchestrator() (*session.Orchestrator, error) {
	lib, err := vignette.NewLibrary(f.Library.Begin, f.Library.Adaptive, f.Library.End, f.Library.Templates)
	if err != nil {
		return nil, fmt.Errorf("fixture library: %w", err)
	}
	return session.NewOrchestrator(lib, f.SessionConfig())
}

// RecordedChoices converts the fixture's choices for the harness.
func (f *Fixture) RecordedChoices() []RecordedChoice {
	out := make([]RecordedChoice, len(f.Choices))
	for i, c := range f.Choices {
		out[i] = RecordedChoice{VignetteID: c.VignetteID, ChosenOption: c.ChosenOption}
	}
	return out
}

// #endregion fixture-loader
