package selector

import (
	"testing"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/fisher"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

var testDims = []string{"financial_importance", "work_life_balance"}

func tradeOffVignette(id string, financial, balance float64) vignette.Vignette {
	return vignette.Vignette{
		ID: id,
		Options: []vignette.Option{
			{ID: "A", Attributes: map[string]vignette.AttrValue{
				"financial_importance": vignette.Number(financial),
				"work_life_balance":    vignette.Number(-balance),
			}},
			{ID: "B", Attributes: map[string]vignette.AttrValue{
				"financial_importance": vignette.Number(-financial),
				"work_life_balance":    vignette.Number(balance),
			}},
		},
	}
}

func newSelector(t *testing.T) *Selector {
	t.Helper()
	c, err := fisher.NewCalculator(1.0)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return NewSelector(c)
}

func prior(t *testing.T) belief.Belief {
	t.Helper()
	b, err := belief.NewPrior(testDims, nil, 1.0)
	if err != nil {
		t.Fatalf("NewPrior: %v", err)
	}
	return b
}

func TestSelectNextVignetteSkipsShown(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	pool := []vignette.Vignette{
		tradeOffVignette("v1", 1.0, 1.0),
		tradeOffVignette("v2", 0.5, 0.5),
	}
	picked := s.SelectNextVignette(pool, b, linalg.Zero(2), []string{"v1"})
	if picked == nil || picked.ID != "v2" {
		t.Fatalf("expected v2, got %+v", picked)
	}
}

func TestSelectNextVignetteEmptyPool(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	if got := s.SelectNextVignette(nil, b, linalg.Zero(2), nil); got != nil {
		t.Fatalf("empty pool should yield nil, got %+v", got)
	}
	pool := []vignette.Vignette{tradeOffVignette("v1", 1, 1)}
	if got := s.SelectNextVignette(pool, b, linalg.Zero(2), []string{"v1"}); got != nil {
		t.Fatalf("fully shown pool should yield nil, got %+v", got)
	}
}

func TestSelectNextVignettePrefersInformative(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	// Seed the information matrix so determinant gains differentiate.
	current := linalg.Diagonal([]float64{0.5, 0.5})
	pool := []vignette.Vignette{
		tradeOffVignette("weak", 0.1, 0.1),
		tradeOffVignette("strong", 1.0, 1.0),
	}
	picked := s.SelectNextVignette(pool, b, current, nil)
	if picked == nil || picked.ID != "strong" {
		t.Fatalf("expected strong vignette, got %+v", picked)
	}
}

func TestSelectNextVignetteTieBreaksFirstSeen(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	pool := []vignette.Vignette{
		tradeOffVignette("first", 1.0, 1.0),
		tradeOffVignette("second", 1.0, 1.0), // identical trade-off
	}
	picked := s.SelectNextVignette(pool, b, linalg.Zero(2), nil)
	if picked == nil || picked.ID != "first" {
		t.Fatalf("tie should break to first-seen, got %+v", picked)
	}
}

func TestRankVignettesSortedAndMatchesSelection(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	current := linalg.Diagonal([]float64{0.5, 0.5})
	pool := []vignette.Vignette{
		tradeOffVignette("weak", 0.1, 0.1),
		tradeOffVignette("strong", 1.0, 1.0),
		tradeOffVignette("medium", 0.5, 0.5),
	}

	ranked := s.RankVignettes(pool, b, current)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked entries, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Gain > ranked[i-1].Gain {
			t.Fatalf("ranking not descending at %d", i)
		}
	}

	picked := s.SelectNextVignette(pool, b, current, nil)
	if picked == nil || picked.ID != ranked[0].Vignette.ID {
		t.Fatalf("rank head %s disagrees with selection %+v", ranked[0].Vignette.ID, picked)
	}
}

func TestRankVignettesEmpty(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	if out := s.RankVignettes(nil, b, linalg.Zero(2)); len(out) != 0 {
		t.Fatalf("empty input should rank empty, got %d", len(out))
	}
}

func TestTemplateDimensionsPrecedence(t *testing.T) {
	explicit := vignette.Template{
		ID:                 "t1",
		Category:           "financial",
		TargetedDimensions: []string{"autonomy"},
	}
	if dims := templateDimensions(explicit); len(dims) != 1 || dims[0] != "autonomy" {
		t.Fatalf("explicit targeted_dimensions must win, got %v", dims)
	}

	byCategory := vignette.Template{ID: "t2", Category: "financial"}
	if dims := templateDimensions(byCategory); len(dims) != 1 || dims[0] != "financial_importance" {
		t.Fatalf("category mapping expected, got %v", dims)
	}

	unknown := vignette.Template{ID: "t3", Category: "mystery"}
	if dims := templateDimensions(unknown); len(dims) != 0 {
		t.Fatalf("unknown category should target nothing, got %v", dims)
	}
}

func TestEstimateTemplateInfoGainMissingDimensions(t *testing.T) {
	s := newSelector(t)
	b := prior(t)
	tpl := vignette.Template{ID: "t1", TargetedDimensions: []string{"not_a_dimension"}}
	if gain := s.estimateTemplateInfoGain(tpl, b); gain != 0.0 {
		t.Fatalf("template with no matching dimensions should score 0, got %f", gain)
	}
}

func TestSelectNextTemplate(t *testing.T) {
	s := newSelector(t)
	b := prior(t)

	if got := s.SelectNextTemplate(nil, b, linalg.Zero(2), nil); got != nil {
		t.Fatalf("empty template pool should yield nil, got %+v", got)
	}

	templates := []vignette.Template{
		{ID: "narrow", TargetedDimensions: []string{"financial_importance"}},
		{ID: "broad", TargetedDimensions: []string{"financial_importance", "work_life_balance"}},
	}
	picked := s.SelectNextTemplate(templates, b, linalg.Zero(2), nil)
	if picked == nil || picked.ID != "broad" {
		t.Fatalf("template covering more uncertain dimensions should win, got %+v", picked)
	}
}
