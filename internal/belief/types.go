package belief

import (
	"time"

	"github.com/tabiya-tech/compass-sub002/internal/linalg"
)

// #region belief
// Belief is a versioned Gaussian belief over the latent preference weights.
// Every posterior update produces a new Belief; values are never mutated.
type Belief struct {
	VersionID  string
	ParentID   string
	Dimensions []string
	Mean       []float64
	Cov        *linalg.Matrix
	CreatedAt  time.Time
}

// K returns the number of preference dimensions.
func (b Belief) K() int {
	return len(b.Dimensions)
}

// #endregion belief

// #region default-dimensions

// DefaultDimensions is the 7-axis layout of the reference deployment.
func DefaultDimensions() []string {
	return []string{
		"financial_importance",
		"work_life_balance",
		"career_growth",
		"job_security",
		"social_impact",
		"autonomy",
		"skill_variety",
	}
}

// #endregion default-dimensions
