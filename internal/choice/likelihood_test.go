package choice

import (
	"math"
	"testing"

	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

var testDims = []string{"financial_importance", "work_life_balance"}

func tradeOffVignette() vignette.Vignette {
	return vignette.Vignette{
		ID:       "v1",
		Category: "financial",
		Scenario: "Higher pay vs better hours.",
		Options: []vignette.Option{
			{ID: "A", Attributes: map[string]vignette.AttrValue{
				"financial_importance": vignette.Number(1.0),
				"work_life_balance":    vignette.Number(-1.0),
			}},
			{ID: "B", Attributes: map[string]vignette.AttrValue{
				"financial_importance": vignette.Number(-1.0),
				"work_life_balance":    vignette.Number(1.0),
			}},
		},
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	v := tradeOffVignette()
	if _, err := New(v, "C", testDims, 1.0); err == nil {
		t.Fatal("expected error for unknown option id")
	}
	if _, err := New(v, "A", testDims, 0); err == nil {
		t.Fatal("expected error for zero temperature")
	}
	if _, err := New(v, "A", testDims, -1); err == nil {
		t.Fatal("expected error for negative temperature")
	}
}

func TestFeatureVectorMapping(t *testing.T) {
	v := tradeOffVignette()
	x := FeatureVector(v, []string{"financial_importance", "work_life_balance", "unmapped"})
	if x[0] != 2.0 || x[1] != -2.0 {
		t.Fatalf("unexpected difference vector: %v", x)
	}
	if x[2] != 0 {
		t.Fatalf("unmapped dimension should contribute 0, got %f", x[2])
	}
}

func TestFeatureVectorBooleans(t *testing.T) {
	v := vignette.Vignette{
		ID: "v2",
		Options: []vignette.Option{
			{ID: "A", Attributes: map[string]vignette.AttrValue{"remote": vignette.Boolean(true)}},
			{ID: "B", Attributes: map[string]vignette.AttrValue{"remote": vignette.Boolean(false)}},
		},
	}
	x := FeatureVector(v, []string{"remote"})
	if x[0] != 1.0 {
		t.Fatalf("expected bool difference 1.0, got %f", x[0])
	}
}

func TestLogProbAtZeroBeta(t *testing.T) {
	lik, err := New(tradeOffVignette(), "A", testDims, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// At β = 0 both options are equally likely.
	got := lik.LogProb([]float64{0, 0})
	if math.Abs(got-math.Log(0.5)) > 1e-12 {
		t.Fatalf("expected log 0.5, got %f", got)
	}
}

func TestOppositeChoicesHaveOppositeGradients(t *testing.T) {
	v := tradeOffVignette()
	likA, _ := New(v, "A", testDims, 1.0)
	likB, _ := New(v, "B", testDims, 1.0)

	beta := []float64{0, 0}
	gA := likA.Grad(beta)
	gB := likB.Grad(beta)
	for i := range gA {
		if math.Abs(gA[i]+gB[i]) > 1e-12 {
			t.Fatalf("gradients not opposite at %d: %f vs %f", i, gA[i], gB[i])
		}
	}
	if gA[0] <= 0 {
		t.Fatalf("choosing A should pull financial_importance up, grad %f", gA[0])
	}
}

func TestLogProbIncreasesAlongGradient(t *testing.T) {
	lik, _ := New(tradeOffVignette(), "A", testDims, 1.0)
	beta := []float64{0.1, -0.2}
	g := lik.Grad(beta)
	stepped := []float64{beta[0] + 0.01*g[0], beta[1] + 0.01*g[1]}
	if lik.LogProb(stepped) <= lik.LogProb(beta) {
		t.Fatal("small gradient step should increase log-probability")
	}
}

func TestHessianNegativePSDObservedInfo(t *testing.T) {
	lik, _ := New(tradeOffVignette(), "B", testDims, 2.0)
	beta := []float64{0.3, 0.7}
	info := lik.ObservedInformation(beta)
	if !info.IsSymmetric(1e-12) {
		t.Fatal("observed information must be symmetric")
	}
	if !info.IsPSD(1e-10) {
		t.Fatal("observed information must be PSD")
	}
	h := lik.Hessian(beta)
	for i := range h.Data {
		if math.Abs(h.Data[i]+info.Data[i]) > 1e-12 {
			t.Fatal("Hessian should equal negated observed information")
		}
	}
}

func TestSigmoidExtremes(t *testing.T) {
	if s := Sigmoid(0); math.Abs(s-0.5) > 1e-12 {
		t.Fatalf("sigmoid(0) = %f", s)
	}
	if s := Sigmoid(800); s != 1 {
		t.Fatalf("sigmoid overflow: %f", s)
	}
	if s := Sigmoid(-800); s != 0 {
		t.Fatalf("sigmoid underflow: %f", s)
	}
}
