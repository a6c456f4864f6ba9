package stopping

import (
	"fmt"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
)

// #region config

// Config holds the stop-rule thresholds.
type Config struct {
	MinVignettes         int
	MaxVignettes         int
	DetThreshold         float64
	MaxVarianceThreshold float64
	Epsilon              float64 // diagonal jitter before the det test
}

// DefaultConfig returns the deployment defaults.
func DefaultConfig() Config {
	return Config{
		MinVignettes:         6,
		MaxVignettes:         14,
		DetThreshold:         0.5,
		MaxVarianceThreshold: 0.15,
		Epsilon:              1e-6,
	}
}

// #endregion config

// #region criterion

// Criterion decides whether elicitation should continue. Count bounds take
// precedence over the information-based early stop; either information
// signal alone suffices once count bounds are met.
type Criterion struct {
	config Config
}

// NewCriterion validates thresholds at construction.
func NewCriterion(config Config) (*Criterion, error) {
	if config.Epsilon == 0 {
		config.Epsilon = DefaultConfig().Epsilon
	}
	if config.MinVignettes < 0 {
		return nil, fmt.Errorf("stopping: min_vignettes must be non-negative, got %d", config.MinVignettes)
	}
	if config.MaxVignettes < config.MinVignettes {
		return nil, fmt.Errorf("stopping: max_vignettes %d below min_vignettes %d",
			config.MaxVignettes, config.MinVignettes)
	}
	if config.DetThreshold <= 0 {
		return nil, fmt.Errorf("stopping: det_threshold must be positive, got %f", config.DetThreshold)
	}
	if config.MaxVarianceThreshold <= 0 {
		return nil, fmt.Errorf("stopping: max_variance_threshold must be positive, got %f", config.MaxVarianceThreshold)
	}
	if config.Epsilon < 0 {
		return nil, fmt.Errorf("stopping: epsilon must be non-negative, got %f", config.Epsilon)
	}
	return &Criterion{config: config}, nil
}

// ShouldContinue applies the ordered stop rules; the first applicable rule
// wins and its reason names the trigger.
func (c *Criterion) ShouldContinue(b belief.Belief, fim *linalg.Matrix, nShown int) (bool, string) {
	if nShown < c.config.MinVignettes {
		return true, fmt.Sprintf("below minimum vignette count (%d < %d)", nShown, c.config.MinVignettes)
	}
	if nShown >= c.config.MaxVignettes {
		return false, fmt.Sprintf("reached maximum vignette count (%d >= %d)", nShown, c.config.MaxVignettes)
	}

	if fim != nil {
		det := fim.AddDiagonal(c.config.Epsilon).Det()
		if det >= c.config.DetThreshold {
			return false, fmt.Sprintf("information determinant %.6g reached threshold %.6g",
				det, c.config.DetThreshold)
		}
	}
	if maxVar := b.MaxVariance(); maxVar <= c.config.MaxVarianceThreshold {
		return false, fmt.Sprintf("max posterior variance %.6g within threshold %.6g",
			maxVar, c.config.MaxVarianceThreshold)
	}

	return true, "information targets not yet met"
}

// #endregion criterion
