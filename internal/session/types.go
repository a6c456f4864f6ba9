package session

import (
	"time"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
)

// #region phase

// Phase marks where a session is in the three-stage elicitation flow.
type Phase string

const (
	PhaseStaticBegin Phase = "static_begin"
	PhaseAdaptive    Phase = "adaptive"
	PhaseStaticEnd   Phase = "static_end"
	PhaseDone        Phase = "done"
)

// #endregion phase

// #region state

// State is an immutable snapshot of one elicitation session. Every
// orchestrator operation returns a new State; values are never mutated, so
// a caller may stop advancing a session at any phase boundary and resume
// from the snapshot later.
type State struct {
	SessionID string
	Phase     Phase
	Belief    belief.Belief
	Info      *linalg.Matrix // accumulated information matrix, starts at zero
	Shown     []string       // ordered shown vignette ids, no duplicates

	BeginIdx      int // progress through the ordered begin list
	EndIdx        int // progress through the ordered end list
	AdaptiveShown int // adaptive answers, bounded by the safety valve

	StopReason string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NShown returns the number of vignettes answered so far.
func (s State) NShown() int {
	return len(s.Shown)
}

// clone returns a copy with its own shown slice and matrix, so the caller's
// snapshot survives further updates.
func (s State) clone() State {
	out := s
	out.Shown = make([]string, len(s.Shown))
	copy(out.Shown, s.Shown)
	out.Info = s.Info.Clone()
	return out
}

// #endregion state

// #region summary

// Summary is the caller-facing digest of a session: what the downstream
// ranking service consumes.
type Summary struct {
	SessionID      string    `json:"session_id"`
	Phase          Phase     `json:"phase"`
	Dimensions     []string  `json:"dimensions"`
	PosteriorMean  []float64 `json:"posterior_mean"`
	PosteriorCov   []float64 `json:"posterior_cov"` // row-major k×k
	InfoMatrix     []float64 `json:"information_matrix"`
	DEfficiency    float64   `json:"d_efficiency"`
	VignettesShown []string  `json:"vignettes_shown"`
	StopReason     string    `json:"stop_reason,omitempty"`
}

// #endregion summary
