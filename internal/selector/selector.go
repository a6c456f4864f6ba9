package selector

import (
	"log"
	"sort"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/fisher"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

// #region selector

// Selector picks the next vignette (or template) maximizing expected
// information gain under the D-optimality criterion.
type Selector struct {
	fim *fisher.Calculator
}

// NewSelector wires the selector to a Fisher information calculator.
func NewSelector(fim *fisher.Calculator) *Selector {
	return &Selector{fim: fim}
}

// RankedVignette pairs a candidate with its one-step determinant gain.
type RankedVignette struct {
	Vignette vignette.Vignette
	Gain     float64
}

// RankedTemplate pairs a template with its estimated information gain.
type RankedTemplate struct {
	Template vignette.Template
	Gain     float64
}

// #endregion selector

// #region select-vignette

// SelectNextVignette returns the not-yet-shown candidate with the largest
// one-step determinant increase at the posterior mean, or nil when the
// remaining pool is empty. Ties break to the first-seen candidate.
func (s *Selector) SelectNextVignette(pool []vignette.Vignette, b belief.Belief, currentFIM *linalg.Matrix, shown []string) *vignette.Vignette {
	shownSet := make(map[string]bool, len(shown))
	for _, id := range shown {
		shownSet[id] = true
	}

	var best *vignette.Vignette
	bestGain := 0.0
	for i := range pool {
		if shownSet[pool[i].ID] {
			continue
		}
		_, gain := s.fim.ExpectedFIM(pool[i], b.Mean, currentFIM, b.Dimensions)
		if best == nil || gain > bestGain {
			best = &pool[i]
			bestGain = gain
		}
	}
	if best != nil {
		log.Printf("[SELECT] vignette=%s det_gain=%.6g pool=%d shown=%d",
			best.ID, bestGain, len(pool), len(shown))
	}
	return best
}

// RankVignettes scores every candidate (shown ones included, for
// diagnostics) and returns them sorted by gain descending. The stable sort
// keeps equal-gain candidates in first-seen order, so the head of the
// ranking always matches what SelectNextVignette would pick.
func (s *Selector) RankVignettes(pool []vignette.Vignette, b belief.Belief, currentFIM *linalg.Matrix) []RankedVignette {
	ranked := make([]RankedVignette, 0, len(pool))
	for _, v := range pool {
		_, gain := s.fim.ExpectedFIM(v, b.Mean, currentFIM, b.Dimensions)
		ranked = append(ranked, RankedVignette{Vignette: v, Gain: gain})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Gain > ranked[j].Gain
	})
	return ranked
}

// #endregion select-vignette

// #region select-template

// categoryDimensions maps a template category to the belief dimensions it
// informs, used when a template carries no explicit targeted_dimensions.
var categoryDimensions = map[string][]string{
	"financial":         {"financial_importance"},
	"work_life_balance": {"work_life_balance"},
	"growth":            {"career_growth"},
	"security":          {"job_security"},
	"impact":            {"social_impact"},
	"autonomy":          {"autonomy"},
	"skills":            {"skill_variety"},
}

// SelectNextTemplate returns the template whose targeted dimensions carry
// the most posterior variance, or nil for an empty pool.
func (s *Selector) SelectNextTemplate(templates []vignette.Template, b belief.Belief, currentFIM *linalg.Matrix, shown []string) *vignette.Template {
	var best *vignette.Template
	bestGain := 0.0
	for i := range templates {
		gain := s.estimateTemplateInfoGain(templates[i], b)
		if best == nil || gain > bestGain {
			best = &templates[i]
			bestGain = gain
		}
	}
	if best != nil {
		log.Printf("[SELECT] template=%s var_gain=%.6g pool=%d", best.ID, bestGain, len(templates))
	}
	return best
}

// RankTemplates scores every template, sorted by gain descending.
func (s *Selector) RankTemplates(templates []vignette.Template, b belief.Belief) []RankedTemplate {
	ranked := make([]RankedTemplate, 0, len(templates))
	for _, t := range templates {
		ranked = append(ranked, RankedTemplate{Template: t, Gain: s.estimateTemplateInfoGain(t, b)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Gain > ranked[j].Gain
	})
	return ranked
}

// templateDimensions resolves the dimensions a template targets, in
// priority order: explicit targeted_dimensions, then the category mapping,
// else none.
func templateDimensions(t vignette.Template) []string {
	if len(t.TargetedDimensions) > 0 {
		return t.TargetedDimensions
	}
	if dims, ok := categoryDimensions[t.Category]; ok {
		return dims
	}
	return nil
}

// estimateTemplateInfoGain sums posterior variance over the template's
// targeted dimensions. Dimensions absent from the belief contribute
// nothing; a template targeting none of the belief's dimensions scores 0.
func (s *Selector) estimateTemplateInfoGain(t vignette.Template, b belief.Belief) float64 {
	var gain float64
	for _, dim := range templateDimensions(t) {
		v, err := b.Variance(dim)
		if err != nil {
			continue
		}
		gain += v
	}
	return gain
}

// #endregion select-template
