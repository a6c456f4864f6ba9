package session

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/choice"
	"github.com/tabiya-tech/compass-sub002/internal/fisher"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
	"github.com/tabiya-tech/compass-sub002/internal/posterior"
	"github.com/tabiya-tech/compass-sub002/internal/selector"
	"github.com/tabiya-tech/compass-sub002/internal/stopping"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

// #region config

// Config bundles the engine parameters for one orchestrator.
type Config struct {
	Temperature float64
	MaxAdaptive int // absolute safety valve on adaptive answers, independent of max_vignettes
	Posterior   posterior.Config
	Stopping    stopping.Config
}

// DefaultConfig returns the deployment defaults.
func DefaultConfig() Config {
	return Config{
		Temperature: 1.0,
		MaxAdaptive: 12,
		Posterior:   posterior.DefaultConfig(),
		Stopping:    stopping.DefaultConfig(),
	}
}

// #endregion config

// #region orchestrator

// Orchestrator drives elicitation sessions over an injected read-only
// vignette library: static_begin → adaptive → static_end → done. It holds
// no per-session mutable state, so independent sessions may run through the
// same orchestrator concurrently.
type Orchestrator struct {
	lib       *vignette.Library
	posterior *posterior.Manager
	fim       *fisher.Calculator
	selector  *selector.Selector
	stop      *stopping.Criterion
	config    Config
}

// NewOrchestrator wires the engine. Configuration errors fail fast here.
func NewOrchestrator(lib *vignette.Library, config Config) (*Orchestrator, error) {
	if lib == nil {
		return nil, fmt.Errorf("session: nil vignette library")
	}
	if config.MaxAdaptive <= 0 {
		config.MaxAdaptive = DefaultConfig().MaxAdaptive
	}
	fim, err := fisher.NewCalculator(config.Temperature)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	stop, err := stopping.NewCriterion(config.Stopping)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &Orchestrator{
		lib:       lib,
		posterior: posterior.NewManager(config.Posterior),
		fim:       fim,
		selector:  selector.NewSelector(fim),
		stop:      stop,
		config:    config,
	}, nil
}

// #endregion orchestrator

// #region start

// StartSession creates a fresh session state from a prior. A nil priorCov
// yields the standard zero-mean unit-diagonal prior.
func (o *Orchestrator) StartSession(dimensions []string, priorMean []float64, priorCov *linalg.Matrix) (State, error) {
	var b belief.Belief
	var err error
	if priorCov == nil {
		b, err = belief.NewPrior(dimensions, priorMean, 1.0)
	} else {
		b, err = belief.NewPriorCov(dimensions, priorMean, priorCov)
	}
	if err != nil {
		return State{}, fmt.Errorf("start session: %w", err)
	}

	now := time.Now().UTC()
	s := State{
		SessionID: uuid.New().String(),
		Phase:     PhaseStaticBegin,
		Belief:    b,
		Info:      linalg.Zero(b.K()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	log.Printf("[SESSION] start id=%s k=%d begin=%d adaptive=%d end=%d",
		s.SessionID, b.K(), len(o.lib.Begin), len(o.lib.Adaptive), len(o.lib.End))
	return s, nil
}

// #endregion start

// #region next

// NextVignette returns the vignette to show next, along with the (possibly
// phase-advanced) state snapshot. A nil vignette means the session is done.
// Calling it twice without recording a choice returns the same vignette.
func (o *Orchestrator) NextVignette(s State) (*vignette.Vignette, State) {
	for {
		switch s.Phase {
		case PhaseStaticBegin:
			if s.BeginIdx < len(o.lib.Begin) {
				v := o.lib.Begin[s.BeginIdx]
				return &v, s
			}
			s = o.advance(s, PhaseAdaptive, "")

		case PhaseAdaptive:
			cont, reason := o.stop.ShouldContinue(s.Belief, s.Info, s.NShown())
			if !cont {
				s = o.advance(s, PhaseStaticEnd, reason)
				continue
			}
			if s.AdaptiveShown >= o.config.MaxAdaptive {
				s = o.advance(s, PhaseStaticEnd,
					fmt.Sprintf("adaptive safety valve reached (%d)", o.config.MaxAdaptive))
				continue
			}
			v := o.selector.SelectNextVignette(o.lib.Adaptive, s.Belief, s.Info, s.Shown)
			if v == nil {
				s = o.advance(s, PhaseStaticEnd, "adaptive pool exhausted")
				continue
			}
			return v, s

		case PhaseStaticEnd:
			if s.EndIdx < len(o.lib.End) {
				v := o.lib.End[s.EndIdx]
				return &v, s
			}
			s = o.advance(s, PhaseDone, "")

		default: // PhaseDone
			return nil, s
		}
	}
}

// advance moves a session to the next phase, recording the stop reason the
// first time one is produced.
func (o *Orchestrator) advance(s State, to Phase, reason string) State {
	out := s.clone()
	out.Phase = to
	out.UpdatedAt = time.Now().UTC()
	if reason != "" && out.StopReason == "" {
		out.StopReason = reason
	}
	log.Printf("[SESSION] id=%s phase %s -> %s reason=%q", s.SessionID, s.Phase, to, reason)
	return out
}

// #endregion next

// #region record

// RecordChoice incorporates one answered vignette, in order: build the
// likelihood, update the posterior, compute the vignette's FIM at the new
// mean, accumulate it into the information matrix, append the shown id.
// The next selection always sees the belief and matrix produced here.
func (o *Orchestrator) RecordChoice(s State, vignetteID, chosenOption string) (State, error) {
	if s.Phase == PhaseDone {
		return s, fmt.Errorf("record choice: session %s is done", s.SessionID)
	}
	v, ok := o.lib.ByID(vignetteID)
	if !ok {
		return s, fmt.Errorf("record choice: unknown vignette %q", vignetteID)
	}
	for _, id := range s.Shown {
		if id == vignetteID {
			return s, fmt.Errorf("record choice: vignette %q already answered", vignetteID)
		}
	}

	lik, err := choice.New(v, chosenOption, s.Belief.Dimensions, o.config.Temperature)
	if err != nil {
		return s, fmt.Errorf("record choice: %w", err)
	}

	newBelief := o.posterior.Update(s.Belief, lik)
	vigFIM := o.fim.FIM(v, newBelief.Mean, newBelief.Dimensions)

	out := s.clone()
	out.Belief = newBelief
	out.Info = out.Info.Add(vigFIM)
	out.Shown = append(out.Shown, vignetteID)
	out.UpdatedAt = time.Now().UTC()

	switch {
	case out.BeginIdx < len(o.lib.Begin) && o.lib.Begin[out.BeginIdx].ID == vignetteID:
		out.BeginIdx++
	case out.EndIdx < len(o.lib.End) && o.lib.End[out.EndIdx].ID == vignetteID:
		out.EndIdx++
	default:
		out.AdaptiveShown++
	}

	log.Printf("[SESSION] id=%s recorded %s=%s n=%d det=%.6g",
		s.SessionID, vignetteID, chosenOption, out.NShown(), out.Info.Det())
	return out, nil
}

// #endregion record

// #region summary

// Summary builds the caller-facing digest of a session state.
func (o *Orchestrator) Summary(s State) Summary {
	return Summary{
		SessionID:      s.SessionID,
		Phase:          s.Phase,
		Dimensions:     s.Belief.Dimensions,
		PosteriorMean:  s.Belief.Mean,
		PosteriorCov:   s.Belief.Cov.Data,
		InfoMatrix:     s.Info.Data,
		DEfficiency:    o.fim.DEfficiency(s.Info),
		VignettesShown: s.Shown,
		StopReason:     s.StopReason,
	}
}

// #endregion summary
