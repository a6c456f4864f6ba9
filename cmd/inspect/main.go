package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tabiya-tech/compass-sub002/internal/provenance"
	"github.com/tabiya-tech/compass-sub002/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to elicitation.db")
	sessionID := flag.String("session", "", "inspect one session's snapshot history")
	showLog := flag.Bool("log", false, "show the provenance log instead of snapshots")
	last := flag.Int("last", 20, "show N most recent snapshots")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/elicitation.db [--session id] [--log] [--last N] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *sessionID == "":
		err = runSessionList(st, *jsonOut)
	case *showLog:
		err = runLogMode(st, *sessionID, *jsonOut)
	default:
		err = runHistoryMode(st, *sessionID, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region session-list

func runSessionList(st *store.Store, jsonOut bool) error {
	ids, err := st.Sessions()
	if err != nil {
		return err
	}
	if jsonOut {
		out, err := json.MarshalIndent(ids, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// #endregion session-list

// #region history-mode

func runHistoryMode(st *store.Store, sessionID string, last int, jsonOut bool) error {
	versions, err := st.ListVersions(sessionID, last)
	if err != nil {
		return err
	}
	if jsonOut {
		out, err := json.MarshalIndent(versions, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("%-38s %-14s %-7s %s\n", "VERSION", "PHASE", "SHOWN", "STOP REASON")
	for _, v := range versions {
		fmt.Printf("%-38s %-14s %-7d %s\n", v.VersionID, v.Phase, v.NShown, v.StopReason)
	}
	return nil
}

// #endregion history-mode

// #region log-mode

func runLogMode(st *store.Store, sessionID string, jsonOut bool) error {
	entries, err := provenance.List(st.DB(), sessionID)
	if err != nil {
		return err
	}
	if jsonOut {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("%-14s %-14s %-10s %-4s %-12s %s\n", "EVENT", "PHASE", "VIGNETTE", "OPT", "DET", "REASON")
	for _, e := range entries {
		fmt.Printf("%-14s %-14s %-10s %-4s %-12.6g %s\n",
			e.EventType, e.Phase, e.VignetteID, e.ChosenOption, e.DetGain, e.Reason)
	}
	return nil
}

// #endregion log-mode
