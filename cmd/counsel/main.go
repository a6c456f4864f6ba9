package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/config"
	"github.com/tabiya-tech/compass-sub002/internal/provenance"
	"github.com/tabiya-tech/compass-sub002/internal/session"
	"github.com/tabiya-tech/compass-sub002/internal/store"
	"github.com/tabiya-tech/compass-sub002/internal/vignette"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("ELICIT_CONFIG", ""), "path to engine YAML config")
	resumeID := flag.String("resume", "", "session id to resume from its last snapshot")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lib, err := vignette.LoadLibrary(cfg.LibraryPath)
	if err != nil {
		log.Fatalf("failed to load vignette library: %v", err)
	}

	orch, err := session.NewOrchestrator(lib, cfg.SessionConfig())
	if err != nil {
		log.Fatalf("failed to build orchestrator: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	var s session.State
	if *resumeID != "" {
		s, err = st.GetCurrent(*resumeID)
		if err != nil {
			log.Fatalf("failed to resume session %s: %v", *resumeID, err)
		}
		fmt.Printf("Resuming session %s (phase %s, %d answered).\n", s.SessionID, s.Phase, s.NShown())
	} else {
		s, err = orch.StartSession(belief.DefaultDimensions(), nil, nil)
		if err != nil {
			log.Fatalf("failed to start session: %v", err)
		}
		if _, err := st.SaveSnapshot(s); err != nil {
			log.Printf("snapshot error: %v", err)
		}
		fmt.Printf("Started session %s.\n", s.SessionID)
	}

	fmt.Printf("  Library: %s (%d vignettes) | DB: %s\n", cfg.LibraryPath, lib.Size(), cfg.DBPath)
	fmt.Println("Answer with 'A' or 'B' ('quit' to stop; the session resumes later).")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		v, next := orch.NextVignette(s)
		if next.Phase != s.Phase {
			s = next
			if _, err := st.SaveSnapshot(s); err != nil {
				log.Printf("snapshot error: %v", err)
			}
			logEvent(st, s, "", "", "phase_advance", s.StopReason)
		}
		if v == nil {
			break
		}

		printVignette(*v)
		answer, ok := readAnswer(scanner)
		if !ok {
			fmt.Println("Stopping; resume with -resume", s.SessionID)
			return
		}

		s, err = orch.RecordChoice(s, v.ID, answer)
		if err != nil {
			log.Printf("record error: %v", err)
			continue
		}
		if _, err := st.SaveSnapshot(s); err != nil {
			log.Printf("snapshot error: %v", err)
		}
		logEvent(st, s, v.ID, answer, "choice", "")

		fmt.Printf("[%d answered] det=%.6g\n\n", s.NShown(), s.Info.Det())
	}

	logEvent(st, s, "", "", "stop", s.StopReason)
	summary := orch.Summary(s)
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Printf("\nSession complete.\n%s\n", out)
}

// #endregion main

// #region helpers

func printVignette(v vignette.Vignette) {
	fmt.Printf("--- %s ---\n%s\n", v.ID, v.Scenario)
	for _, o := range v.Options {
		fmt.Printf("  [%s] %s", o.ID, o.Title)
		if o.Description != "" {
			fmt.Printf(" — %s", o.Description)
		}
		fmt.Println()
	}
}

func readAnswer(scanner *bufio.Scanner) (string, bool) {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return "", false
		}
		answer := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if answer == "QUIT" || answer == "EXIT" {
			return "", false
		}
		if answer == "A" || answer == "B" {
			return answer, true
		}
		fmt.Println("Please answer A or B.")
	}
}

func logEvent(st *store.Store, s session.State, vignetteID, chosen, event, reason string) {
	err := provenance.Log(st.DB(), provenance.Entry{
		SessionID:    s.SessionID,
		VignetteID:   vignetteID,
		Phase:        string(s.Phase),
		EventType:    event,
		ChosenOption: chosen,
		DetGain:      s.Info.Det(),
		Reason:       reason,
	})
	if err != nil {
		log.Printf("provenance error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
