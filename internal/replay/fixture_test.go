package replay

import (
	"os"
	"path/filepath"
	"testing"
)

const fixtureJSON = `{
	"description": "two begin answers then one adaptive",
	"dimensions": ["financial_importance", "work_life_balance"],
	"config": {
		"temperature": 1.0,
		"min_vignettes": 1,
		"max_vignettes": 10,
		"det_threshold": 1000000,
		"max_variance_threshold": 0.000001
	},
	"library": {
		"begin": [
			{"id": "b1", "scenario": "s", "options": [
				{"id": "A", "attributes": {"financial_importance": 1.0}},
				{"id": "B", "attributes": {"financial_importance": -1.0}}
			]},
			{"id": "b2", "scenario": "s", "options": [
				{"id": "A", "attributes": {"work_life_balance": 1.0}},
				{"id": "B", "attributes": {"work_life_balance": -1.0}}
			]}
		],
		"adaptive": [
			{"id": "a1", "scenario": "s", "options": [
				{"id": "A", "attributes": {"financial_importance": 1.0, "work_life_balance": -1.0}},
				{"id": "B", "attributes": {"financial_importance": -1.0, "work_life_balance": 1.0}}
			]}
		],
		"end": []
	},
	"choices": [
		{"vignette_id": "b1", "chosen_option": "A"},
		{"vignette_id": "b2", "chosen_option": "B"},
		{"vignette_id": "a1", "chosen_option": "A"}
	],
	"expected_results": [
		{"vignette_id": "b1", "applied": true},
		{"vignette_id": "b2", "applied": true},
		{"vignette_id": "a1", "applied": true}
	]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixtureAndReplay(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, fixtureJSON))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	o, err := f.NewOrchestrator()
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	results, summary, err := Replay(o, f.Dimensions, f.RecordedChoices())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.Applied != 3 {
		t.Fatalf("expected 3 applied, got %+v", summary)
	}
	for i, exp := range f.ExpectedResults {
		if results[i].VignetteID != exp.VignetteID || results[i].Applied != exp.Applied {
			t.Fatalf("result %d mismatch: got %+v want %+v", i, results[i], exp)
		}
	}
}

func TestLoadFixtureRejectsEmpty(t *testing.T) {
	if _, err := LoadFixture(writeFixture(t, `{"dimensions": ["a"], "choices": []}`)); err == nil {
		t.Fatal("expected error for fixture without choices")
	}
	if _, err := LoadFixture(writeFixture(t, `{"choices": [{"vignette_id": "v", "chosen_option": "A"}]}`)); err == nil {
		t.Fatal("expected error for fixture without dimensions")
	}
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
