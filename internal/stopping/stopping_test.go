package stopping

import (
	"strings"
	"testing"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
)

func testBelief(t *testing.T, variance float64) belief.Belief {
	t.Helper()
	b, err := belief.NewPrior([]string{"a", "b"}, nil, variance)
	if err != nil {
		t.Fatalf("NewPrior: %v", err)
	}
	return b
}

func testConfig() Config {
	return Config{
		MinVignettes:         3,
		MaxVignettes:         10,
		DetThreshold:         100.0,
		MaxVarianceThreshold: 0.1,
		Epsilon:              1e-6,
	}
}

func TestNewCriterionValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max below min", func(c *Config) { c.MaxVignettes = 1 }},
		{"zero det threshold", func(c *Config) { c.DetThreshold = 0 }},
		{"zero variance threshold", func(c *Config) { c.MaxVarianceThreshold = 0 }},
		{"negative min", func(c *Config) { c.MinVignettes = -1 }},
	}
	for _, tc := range cases {
		cfg := testConfig()
		tc.mutate(&cfg)
		if _, err := NewCriterion(cfg); err == nil {
			t.Fatalf("%s: expected construction error", tc.name)
		}
	}
}

func TestContinueBelowMinimum(t *testing.T) {
	c, err := NewCriterion(testConfig())
	if err != nil {
		t.Fatalf("NewCriterion: %v", err)
	}
	// Even a fully resolved belief must not stop below the floor.
	b := testBelief(t, 0.001)
	cont, reason := c.ShouldContinue(b, linalg.Diagonal([]float64{1000, 1000}), 2)
	if !cont {
		t.Fatalf("expected continue below minimum, reason %q", reason)
	}
	if !strings.Contains(reason, "minimum") {
		t.Fatalf("reason should name the minimum rule, got %q", reason)
	}
}

func TestStopAtMaximum(t *testing.T) {
	c, _ := NewCriterion(testConfig())
	// An uncertain belief must still stop at the ceiling.
	b := testBelief(t, 10.0)
	cont, reason := c.ShouldContinue(b, linalg.Zero(2), 10)
	if cont {
		t.Fatal("expected stop at maximum")
	}
	if !strings.Contains(reason, "maximum") {
		t.Fatalf("reason should name the maximum rule, got %q", reason)
	}
}

func TestStopOnDeterminant(t *testing.T) {
	c, _ := NewCriterion(testConfig())
	b := testBelief(t, 10.0) // variance rule would not trigger
	fim := linalg.Diagonal([]float64{20, 20})
	cont, reason := c.ShouldContinue(b, fim, 5)
	if cont {
		t.Fatal("expected stop once determinant threshold is reached")
	}
	if !strings.Contains(reason, "determinant") {
		t.Fatalf("reason should name the determinant rule, got %q", reason)
	}
}

func TestStopOnVariance(t *testing.T) {
	c, _ := NewCriterion(testConfig())
	b := testBelief(t, 0.05) // all variances below threshold
	cont, reason := c.ShouldContinue(b, linalg.Zero(2), 5)
	if cont {
		t.Fatal("expected stop once posterior variance is low")
	}
	if !strings.Contains(reason, "variance") {
		t.Fatalf("reason should name the variance rule, got %q", reason)
	}
}

func TestContinueBetweenBounds(t *testing.T) {
	c, _ := NewCriterion(testConfig())
	b := testBelief(t, 1.0)
	cont, _ := c.ShouldContinue(b, linalg.Zero(2), 5)
	if !cont {
		t.Fatal("expected continue while information targets unmet")
	}
}
