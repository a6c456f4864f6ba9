package fisher

import (
	"fmt"
	"math"

	"github.com/tabiya-tech/compass-sub002/internal/choice"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

// #region calculator

// Calculator quantifies how much a candidate vignette would constrain the
// preference weights, without requiring an answer. This is the artifact the
// D-optimal selector ranks on.
type Calculator struct {
	Temperature float64
}

// NewCalculator fails fast on non-positive temperature.
func NewCalculator(temperature float64) (*Calculator, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("fisher: temperature must be positive, got %f", temperature)
	}
	return &Calculator{Temperature: temperature}, nil
}

// #endregion calculator

// #region fim

// FIM computes the Fisher information of one vignette at β:
// p·(1−p)·x·xᵗ/T² with p = sigmoid(x·β/T). Always symmetric PSD.
func (c *Calculator) FIM(v vignette.Vignette, beta []float64, dimensions []string) *linalg.Matrix {
	x := choice.FeatureVector(v, dimensions)
	p := choice.Sigmoid(linalg.Dot(x, beta) / c.Temperature)
	return linalg.Outer(x, p*(1-p)/(c.Temperature*c.Temperature))
}

// ExpectedFIM is the one-step-lookahead D-optimality gain of a candidate:
// the accumulated matrix after adding the candidate's FIM evaluated at the
// posterior mean, and the determinant increase it buys. The FIM is taken at
// the mean only; the unknown answer is not marginalized over.
func (c *Calculator) ExpectedFIM(v vignette.Vignette, posteriorMean []float64, currentFIM *linalg.Matrix, dimensions []string) (*linalg.Matrix, float64) {
	candidate := c.FIM(v, posteriorMean, dimensions)
	if currentFIM == nil {
		currentFIM = linalg.Zero(len(dimensions))
	}
	newFIM := currentFIM.Add(candidate)
	return newFIM, newFIM.Det() - currentFIM.Det()
}

// #endregion fim

// #region d-efficiency

// DEfficiency summarizes collected information as det(fim)^(1/k), comparable
// across session lengths. Degenerate matrices score 0, never NaN or ±Inf.
func (c *Calculator) DEfficiency(fim *linalg.Matrix) float64 {
	if fim == nil || fim.N == 0 {
		return 0
	}
	det := fim.Det()
	if det <= 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return 0
	}
	eff := math.Pow(det, 1/float64(fim.N))
	if math.IsNaN(eff) || math.IsInf(eff, 0) {
		return 0
	}
	return eff
}

// #endregion d-efficiency
