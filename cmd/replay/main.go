package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tabiya-tech/compass-sub002/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath))
}

// #endregion main

// #region run

func run(fixturePath string) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	orch, err := f.NewOrchestrator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	results, summary, err := replay.Replay(orch, f.Dimensions, f.RecordedChoices())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay error: %v\n", err)
		return 1
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	fmt.Printf("%-4s %-10s %-4s %-8s %-12s %s\n", "#", "VIGNETTE", "OPT", "APPLIED", "DET", "ERROR")
	for i, r := range results {
		fmt.Printf("%-4d %-10s %-4s %-8v %-12.6g %s\n",
			i+1, r.VignetteID, r.ChosenOption, r.Applied, r.Det, r.Err)
	}
	fmt.Printf("\n%d choices: %d applied, %d skipped, final phase %s\n",
		summary.TotalChoices, summary.Applied, summary.Skipped, summary.FinalState.Phase)

	// Diff against expectations when the fixture carries them.
	failures := 0
	for i, exp := range f.ExpectedResults {
		if i >= len(results) {
			fmt.Printf("MISSING: expected result for %s\n", exp.VignetteID)
			failures++
			continue
		}
		if results[i].VignetteID != exp.VignetteID || results[i].Applied != exp.Applied {
			fmt.Printf("MISMATCH at %d: got %s applied=%v, want %s applied=%v\n",
				i+1, results[i].VignetteID, results[i].Applied, exp.VignetteID, exp.Applied)
			failures++
		}
	}
	if failures > 0 {
		fmt.Printf("%d expectation(s) failed\n", failures)
		return 1
	}
	if len(f.ExpectedResults) > 0 {
		fmt.Println("all expectations met")
	}
	return 0
}

// #endregion run
