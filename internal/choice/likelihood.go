package choice

import (
	"fmt"
	"math"

	"github.com/tabiya-tech/compass-sub002/internal/linalg"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

// #region likelihood

// Likelihood models P(chosen option | preference weights β) for one answered
// vignette under a logistic Bradley-Terry choice rule:
//
//	P(A) = sigmoid(x·β / temperature)
//
// where x = features(A) − features(B) projected onto the dimension set.
// The struct is a pure value: LogProb, Grad, and Hessian are side-effect
// free functions of β, giving the posterior manager everything it needs to
// differentiate the log-likelihood.
type Likelihood struct {
	X           []float64 // attribute-difference vector, one entry per dimension
	Sign        float64   // +1 if A was chosen, -1 if B
	Temperature float64
}

// New builds the likelihood for a recorded choice. Fails if chosenOption is
// not one of the vignette's option ids or temperature is not positive.
func New(v vignette.Vignette, chosenOption string, dimensions []string, temperature float64) (Likelihood, error) {
	if temperature <= 0 {
		return Likelihood{}, fmt.Errorf("likelihood: temperature must be positive, got %f", temperature)
	}
	if err := v.Validate(); err != nil {
		return Likelihood{}, fmt.Errorf("likelihood: %w", err)
	}
	if _, ok := v.Option(chosenOption); !ok {
		return Likelihood{}, fmt.Errorf("likelihood: vignette %s has no option %q", v.ID, chosenOption)
	}

	sign := 1.0
	if chosenOption == "B" {
		sign = -1.0
	}
	return Likelihood{
		X:           FeatureVector(v, dimensions),
		Sign:        sign,
		Temperature: temperature,
	}, nil
}

// #endregion likelihood

// #region feature-vector

// FeatureVector computes x = attributes(A) − attributes(B) mapped into the
// dimension set. An attribute contributes iff its name equals a dimension
// id; booleans map to 1/0; everything unmapped contributes 0.
func FeatureVector(v vignette.Vignette, dimensions []string) []float64 {
	a, _ := v.Option("A")
	b, _ := v.Option("B")
	x := make([]float64, len(dimensions))
	for i, dim := range dimensions {
		var va, vb float64
		if av, ok := a.Attributes[dim]; ok {
			va = av.AsFloat()
		}
		if bv, ok := b.Attributes[dim]; ok {
			vb = bv.AsFloat()
		}
		x[i] = va - vb
	}
	return x
}

// #endregion feature-vector

// #region derivatives

// z returns the signed logit at β.
func (l Likelihood) z(beta []float64) float64 {
	return l.Sign * linalg.Dot(l.X, beta) / l.Temperature
}

// LogProb returns log P(chosen | β), computed as -log(1+exp(-z)) with the
// usual overflow guard.
func (l Likelihood) LogProb(beta []float64) float64 {
	z := l.z(beta)
	if z > 0 {
		return -math.Log1p(math.Exp(-z))
	}
	return z - math.Log1p(math.Exp(z))
}

// Grad returns ∇β log P(chosen | β) = (1 − sigmoid(z)) · sign · x / T.
func (l Likelihood) Grad(beta []float64) []float64 {
	w := 1 - Sigmoid(l.z(beta))
	g := make([]float64, len(l.X))
	for i, xi := range l.X {
		g[i] = w * l.Sign * xi / l.Temperature
	}
	return g
}

// Hessian returns the Hessian of log P at β: −p(1−p)·x·xᵗ/T². The curvature
// does not depend on which option was chosen.
func (l Likelihood) Hessian(beta []float64) *linalg.Matrix {
	p := Sigmoid(linalg.Dot(l.X, beta) / l.Temperature)
	return linalg.Outer(l.X, -p*(1-p)/(l.Temperature*l.Temperature))
}

// ObservedInformation returns −Hessian: the information this single choice
// contributes at β. Always symmetric PSD.
func (l Likelihood) ObservedInformation(beta []float64) *linalg.Matrix {
	p := Sigmoid(linalg.Dot(l.X, beta) / l.Temperature)
	return linalg.Outer(l.X, p*(1-p)/(l.Temperature*l.Temperature))
}

// Sigmoid is the standard logistic function.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// #endregion derivatives
