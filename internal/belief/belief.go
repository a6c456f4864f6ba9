package belief

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
)

// #region prior

// NewPrior builds the session-start belief: mean and a diagonal covariance.
// A nil mean defaults to zeros; variance must be positive.
func NewPrior(dimensions []string, mean []float64, variance float64) (Belief, error) {
	k := len(dimensions)
	if k == 0 {
		return Belief{}, fmt.Errorf("prior: empty dimension set")
	}
	seen := make(map[string]struct{}, k)
	for _, d := range dimensions {
		if d == "" {
			return Belief{}, fmt.Errorf("prior: empty dimension name")
		}
		if _, dup := seen[d]; dup {
			return Belief{}, fmt.Errorf("prior: duplicate dimension %q", d)
		}
		seen[d] = struct{}{}
	}
	if variance <= 0 {
		return Belief{}, fmt.Errorf("prior: variance must be positive, got %f", variance)
	}
	if mean == nil {
		mean = make([]float64, k)
	}
	if len(mean) != k {
		return Belief{}, fmt.Errorf("prior: mean has %d entries for %d dimensions", len(mean), k)
	}

	diag := make([]float64, k)
	for i := range diag {
		diag[i] = variance
	}

	dims := make([]string, k)
	copy(dims, dimensions)
	m := make([]float64, k)
	copy(m, mean)

	return Belief{
		VersionID:  uuid.New().String(),
		Dimensions: dims,
		Mean:       m,
		Cov:        linalg.Diagonal(diag),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// NewPriorCov builds a session-start belief from an explicit covariance.
func NewPriorCov(dimensions []string, mean []float64, cov *linalg.Matrix) (Belief, error) {
	b, err := NewPrior(dimensions, mean, 1.0)
	if err != nil {
		return Belief{}, err
	}
	if cov == nil || cov.N != b.K() {
		return Belief{}, fmt.Errorf("prior: covariance order does not match %d dimensions", b.K())
	}
	if !cov.IsSymmetric(1e-9) || !cov.IsPSD(1e-9) {
		return Belief{}, fmt.Errorf("prior: covariance is not symmetric PSD")
	}
	b.Cov = cov.Clone()
	return b, nil
}

// #endregion prior

// #region accessors

// Index returns the position of a dimension id, or an error for unknown names.
func (b Belief) Index(dimension string) (int, error) {
	for i, d := range b.Dimensions {
		if d == dimension {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", dimension)
}

// Variance returns the marginal variance of one dimension.
func (b Belief) Variance(dimension string) (float64, error) {
	i, err := b.Index(dimension)
	if err != nil {
		return 0, err
	}
	return b.Cov.At(i, i), nil
}

// MaxVariance returns the largest marginal variance across dimensions.
func (b Belief) MaxVariance() float64 {
	max := 0.0
	for i := 0; i < b.K(); i++ {
		if v := b.Cov.At(i, i); v > max {
			max = v
		}
	}
	return max
}

// MeanVariance returns the average marginal variance across dimensions.
func (b Belief) MeanVariance() float64 {
	if b.K() == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < b.K(); i++ {
		sum += b.Cov.At(i, i)
	}
	return sum / float64(b.K())
}

// Child returns a copy of b carrying new mean and covariance, with a fresh
// version id and the parent link set.
func (b Belief) Child(mean []float64, cov *linalg.Matrix) Belief {
	m := make([]float64, len(mean))
	copy(m, mean)
	return Belief{
		VersionID:  uuid.New().String(),
		ParentID:   b.VersionID,
		Dimensions: b.Dimensions,
		Mean:       m,
		Cov:        cov.Clone(),
		CreatedAt:  time.Now().UTC(),
	}
}

// #endregion accessors
