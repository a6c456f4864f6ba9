package provenance

import (
	"path/filepath"
	"testing"

	"github.com/tabiya-tech/compass-sub002/internal/store"
)

func TestLogAndList(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	entries := []Entry{
		{SessionID: "sess-1", VignetteID: "v1", Phase: "adaptive", EventType: "select", DetGain: 0.42},
		{SessionID: "sess-1", VignetteID: "v1", Phase: "adaptive", EventType: "choice", ChosenOption: "A"},
		{SessionID: "sess-1", Phase: "adaptive", EventType: "stop", Reason: "reached maximum vignette count"},
		{SessionID: "sess-2", VignetteID: "v9", Phase: "static_begin", EventType: "choice", ChosenOption: "B"},
	}
	for _, e := range entries {
		if err := Log(s.DB(), e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	got, err := List(s.DB(), "sess-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries for sess-1, got %d", len(got))
	}
	if got[0].EventType != "select" || got[0].DetGain != 0.42 {
		t.Fatalf("first entry mangled: %+v", got[0])
	}
	if got[1].ChosenOption != "A" {
		t.Fatalf("chosen option lost: %+v", got[1])
	}
	if got[2].Reason == "" {
		t.Fatal("stop reason lost")
	}
	if got[2].VignetteID != "" {
		t.Fatalf("expected empty vignette id on stop entry, got %q", got[2].VignetteID)
	}
}
