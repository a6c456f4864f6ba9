package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tabiya-tech/compass-sub002/internal/fisher"
	"github.com/tabiya-tech/compass-sub002/internal/store"
)

// #region types

// profile is the JSON document handed to the downstream ranking service:
// the elicited preference weights with their remaining uncertainty.
type profile struct {
	SessionID     string             `json:"session_id"`
	Phase         string             `json:"phase"`
	Dimensions    []string           `json:"dimensions"`
	Weights       map[string]float64 `json:"weights"`
	Variances     map[string]float64 `json:"variances"`
	PosteriorMean []float64          `json:"posterior_mean"`
	PosteriorCov  []float64          `json:"posterior_cov"`
	DEfficiency   float64            `json:"d_efficiency"`
	Shown         []string           `json:"vignettes_shown"`
	StopReason    string             `json:"stop_reason,omitempty"`
}

// #endregion types

// #region main

func main() {
	dbPath := flag.String("db", "", "path to elicitation.db")
	sessionID := flag.String("session", "", "session to export")
	outPath := flag.String("out", "", "output profile JSON path (default stdout)")
	flag.Parse()

	if *dbPath == "" || *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: profile-export --db path/to/elicitation.db --session id [--out profile.json]")
		os.Exit(2)
	}

	if err := run(*dbPath, *sessionID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dbPath, sessionID, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	s, err := st.GetCurrent(sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	// D-efficiency is det^(1/k) of the stored information matrix; the
	// calculator's temperature plays no part in it.
	calc, err := fisher.NewCalculator(1.0)
	if err != nil {
		return err
	}

	p := profile{
		SessionID:     s.SessionID,
		Phase:         string(s.Phase),
		Dimensions:    s.Belief.Dimensions,
		Weights:       map[string]float64{},
		Variances:     map[string]float64{},
		PosteriorMean: s.Belief.Mean,
		PosteriorCov:  s.Belief.Cov.Data,
		DEfficiency:   calc.DEfficiency(s.Info),
		Shown:         s.Shown,
		StopReason:    s.StopReason,
	}
	for i, dim := range s.Belief.Dimensions {
		p.Weights[dim] = s.Belief.Mean[i]
		p.Variances[dim] = s.Belief.Cov.At(i, i)
	}

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	out = append(out, '\n')

	if outPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// #endregion run
