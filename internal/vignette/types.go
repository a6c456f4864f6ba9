package vignette

import (
	"encoding/json"
	"fmt"
)

// #region attr-value

// AttrValue is a tagged numeric-or-boolean attribute value. Vignette options
// carry structured trade-offs as attribute maps; keeping the value typed
// keeps the attribute → dimension feature mapping total.
type AttrValue struct {
	IsBool bool
	Num    float64
	Bool   bool
}

// Number builds a numeric attribute value.
func Number(v float64) AttrValue {
	return AttrValue{Num: v}
}

// Boolean builds a boolean attribute value.
func Boolean(v bool) AttrValue {
	return AttrValue{IsBool: true, Bool: v}
}

// AsFloat maps the value onto the preference axis: numbers pass through,
// booleans become 1/0.
func (a AttrValue) AsFloat() float64 {
	if a.IsBool {
		if a.Bool {
			return 1
		}
		return 0
	}
	return a.Num
}

// UnmarshalJSON accepts JSON numbers and booleans only.
func (a *AttrValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = Boolean(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Number(n)
		return nil
	}
	return fmt.Errorf("attribute value %s is neither number nor bool", string(data))
}

// MarshalJSON writes the underlying number or bool.
func (a AttrValue) MarshalJSON() ([]byte, error) {
	if a.IsBool {
		return json.Marshal(a.Bool)
	}
	return json.Marshal(a.Num)
}

// #endregion attr-value

// #region option

// Option is one side of a forced-choice vignette.
type Option struct {
	ID          string               `json:"id"` // "A" | "B"
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Attributes  map[string]AttrValue `json:"attributes"`
}

// #endregion option

// #region vignette

// Vignette is a single forced-choice question: one scenario, two options.
// Immutable once loaded.
type Vignette struct {
	ID                 string   `json:"id"`
	Category           string   `json:"category"`
	Scenario           string   `json:"scenario"`
	Options            []Option `json:"options"`
	FollowUps          []string `json:"follow_ups,omitempty"`
	TargetedDimensions []string `json:"targeted_dimensions,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
}

// Validate checks the two-option A/B contract.
func (v Vignette) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vignette without id")
	}
	if len(v.Options) != 2 {
		return fmt.Errorf("vignette %s: expected exactly 2 options, got %d", v.ID, len(v.Options))
	}
	ids := map[string]bool{}
	for _, o := range v.Options {
		ids[o.ID] = true
	}
	if !ids["A"] || !ids["B"] {
		return fmt.Errorf("vignette %s: options must be tagged A and B", v.ID)
	}
	return nil
}

// Option returns the option with the given id.
func (v Vignette) Option(id string) (Option, bool) {
	for _, o := range v.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// #endregion vignette

// #region template

// AttrSpec describes an attribute slot in a template schema: a numeric
// range and/or a discrete level set, not a concrete value.
type AttrSpec struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Levels []string `json:"levels,omitempty"`
}

// TradeOff names the two preference dimensions a template pits against
// each other.
type TradeOff struct {
	DimensionA string `json:"dimension_a"`
	DimensionB string `json:"dimension_b"`
}

// Template is a coarser-grained vignette: attribute schemas instead of
// concrete values. Selection can run on templates before personalization
// materializes concrete vignettes.
type Template struct {
	ID                 string                         `json:"id"`
	Category           string                         `json:"category"`
	TradeOff           TradeOff                       `json:"trade_off"`
	OptionSchemas      map[string]map[string]AttrSpec `json:"option_schemas"` // option id → attr name → spec
	TargetedDimensions []string                       `json:"targeted_dimensions,omitempty"`
}

// #endregion template
