package vignette

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region library

// Library is the process-wide read-only vignette registry: an ordered
// "begin" list, the adaptive candidate pool, an ordered "end" list, and
// the template set. Loaded once at startup and injected; never mutated.
type Library struct {
	Begin     []Vignette `json:"begin"`
	Adaptive  []Vignette `json:"adaptive"`
	End       []Vignette `json:"end"`
	Templates []Template `json:"templates,omitempty"`

	byID map[string]Vignette
}

// #endregion library

// #region loader

// LoadLibrary reads and validates a library JSON file.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", path, err)
	}
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse library %s: %w", path, err)
	}
	if err := lib.init(); err != nil {
		return nil, fmt.Errorf("validate library %s: %w", path, err)
	}
	return &lib, nil
}

// NewLibrary builds a validated in-memory library (tests, embedded data).
func NewLibrary(begin, adaptive, end []Vignette, templates []Template) (*Library, error) {
	lib := Library{Begin: begin, Adaptive: adaptive, End: end, Templates: templates}
	if err := lib.init(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (l *Library) init() error {
	l.byID = make(map[string]Vignette)
	for _, group := range [][]Vignette{l.Begin, l.Adaptive, l.End} {
		for _, v := range group {
			if err := v.Validate(); err != nil {
				return err
			}
			if _, dup := l.byID[v.ID]; dup {
				return fmt.Errorf("duplicate vignette id %s", v.ID)
			}
			l.byID[v.ID] = v
		}
	}
	for _, t := range l.Templates {
		if t.ID == "" {
			return fmt.Errorf("template without id")
		}
	}
	return nil
}

// #endregion loader

// #region lookup

// ByID returns the vignette with the given id from any collection.
func (l *Library) ByID(id string) (Vignette, bool) {
	v, ok := l.byID[id]
	return v, ok
}

// Size returns the total number of vignettes across all three collections.
func (l *Library) Size() int {
	return len(l.byID)
}

// #endregion lookup
