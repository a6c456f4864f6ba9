package posterior

import (
	"log"
	"math"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/choice"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
)

// #region config

// Config bounds the Laplace MAP search.
type Config struct {
	MaxIterations int     // Newton iteration budget
	Tolerance     float64 // step-norm convergence threshold
	Ridge         float64 // diagonal regularizer for near-singular matrices
	FallbackStep  float64 // gradient step size when Newton fails to converge
}

// DefaultConfig returns the deployment defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 25,
		Tolerance:     1e-6,
		Ridge:         1e-8,
		FallbackStep:  0.1,
	}
}

// #endregion config

// #region manager

// Manager updates a Gaussian belief from one recorded choice at a time via
// Laplace approximation: a bounded Newton search finds the posterior mode,
// and the new covariance is the regularized inverse Hessian of the negative
// log-posterior at that mode.
type Manager struct {
	config Config
}

// NewManager creates a posterior manager. Zero-valued config fields fall
// back to defaults so a partially specified config stays usable.
func NewManager(config Config) *Manager {
	def := DefaultConfig()
	if config.MaxIterations <= 0 {
		config.MaxIterations = def.MaxIterations
	}
	if config.Tolerance <= 0 {
		config.Tolerance = def.Tolerance
	}
	if config.Ridge <= 0 {
		config.Ridge = def.Ridge
	}
	if config.FallbackStep <= 0 {
		config.FallbackStep = def.FallbackStep
	}
	return &Manager{config: config}
}

// #endregion manager

// #region update

// Update incorporates one choice and returns the new belief. It never
// fails: if Newton does not converge within budget, the mode falls back to
// a single gradient step from the current mean so the session can proceed.
func (m *Manager) Update(b belief.Belief, lik choice.Likelihood) belief.Belief {
	priorPrecision := b.Cov.InverseRegularized(m.config.Ridge)

	mode, converged := m.findMode(b.Mean, priorPrecision, lik)
	if !converged {
		log.Printf("[POSTERIOR] newton did not converge in %d iterations, falling back to gradient step",
			m.config.MaxIterations)
		g := lik.Grad(b.Mean)
		mode = make([]float64, len(b.Mean))
		for i := range mode {
			mode[i] = b.Mean[i] + m.config.FallbackStep*g[i]
		}
	}

	// Covariance = inverse of (prior precision + observed information) at
	// the mode, regularized and symmetrized so it stays symmetric PSD.
	hessian := priorPrecision.Add(lik.ObservedInformation(mode))
	cov := hessian.AddDiagonal(m.config.Ridge).InverseRegularized(m.config.Ridge).Symmetrize()

	return b.Child(mode, cov)
}

// findMode runs the bounded Newton/IRLS search maximizing
// log-prior(β) + log-likelihood(β) from the current mean.
func (m *Manager) findMode(start []float64, priorPrecision *linalg.Matrix, lik choice.Likelihood) ([]float64, bool) {
	beta := make([]float64, len(start))
	copy(beta, start)

	for iter := 0; iter < m.config.MaxIterations; iter++ {
		// Gradient of the negative log-posterior.
		diff := linalg.Sub(beta, start)
		grad := priorPrecision.MulVec(diff)
		likGrad := lik.Grad(beta)
		for i := range grad {
			grad[i] -= likGrad[i]
		}

		hessian := priorPrecision.Add(lik.ObservedInformation(beta))
		step := hessian.InverseRegularized(m.config.Ridge).MulVec(grad)

		for i := range beta {
			beta[i] -= step[i]
		}
		if sane(beta) && linalg.Norm(step) < m.config.Tolerance {
			return beta, true
		}
		if !sane(beta) {
			return nil, false
		}
	}
	return nil, false
}

func sane(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// #endregion update
