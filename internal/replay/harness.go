package replay

import (
	"github.com/tabiya-tech/compass-sub002/internal/session"
)

// #region types

// RecordedChoice is a single answered vignette from a recorded session.
type RecordedChoice struct {
	VignetteID   string
	ChosenOption string
}

// Result captures the outcome of replaying one recorded choice.
type Result struct {
	VignetteID   string
	ChosenOption string
	Applied      bool
	Err          string // non-empty when the choice was skipped
	Det          float64
	DEfficiency  float64
	NShown       int
}

// Summary aggregates a replay run.
type Summary struct {
	TotalChoices int
	Applied      int
	Skipped      int
	FinalState   session.State
}

// #endregion types

// #region replay

// Replay runs recorded choices through the full pipeline on a fresh
// session: likelihood → posterior → information accumulation per choice.
// A choice the engine rejects (unknown vignette, bad option, duplicate) is
// skipped and the run continues; a recorded session must always replay to
// completion. Operates entirely in-memory.
func Replay(o *session.Orchestrator, dimensions []string, choices []RecordedChoice) ([]Result, Summary, error) {
	s, err := o.StartSession(dimensions, nil, nil)
	if err != nil {
		return nil, Summary{}, err
	}

	results := make([]Result, 0, len(choices))
	summary := Summary{TotalChoices: len(choices)}

	for _, c := range choices {
		// Let the state machine advance phases between answers the same
		// way a live session would.
		_, s = o.NextVignette(s)

		next, err := o.RecordChoice(s, c.VignetteID, c.ChosenOption)
		res := Result{VignetteID: c.VignetteID, ChosenOption: c.ChosenOption}
		if err != nil {
			res.Err = err.Error()
			summary.Skipped++
		} else {
			s = next
			res.Applied = true
			summary.Applied++
		}
		res.Det = s.Info.Det()
		res.DEfficiency = o.Summary(s).DEfficiency
		res.NShown = s.NShown()
		results = append(results, res)
	}

	// Drain any remaining phase transition so the final state reports
	// where the session actually stands.
	_, s = o.NextVignette(s)
	summary.FinalState = s
	return results, summary, nil
}

// #endregion replay
