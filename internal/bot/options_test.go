package bot

import (
	"testing"
)

func buildSchema() *OptionsBuilder {
	ob := NewOptionsBuilder()
	ob.AddSlider("count", "How many", 1, 50)
	ob.AddCheckboxes("logs", "Log types", []string{"oak", "willow", "yew"})
	ob.AddDropdown("mode", "Mode", []string{"powerchop", "bank"})
	ob.AddText("name", "Character name", "e.g. Zezima")
	return ob
}

func TestOptionsDeclarationOrder(t *testing.T) {
	ob := buildSchema()
	opts := ob.Options()
	if len(opts) != 4 {
		t.Fatalf("got %d options, want 4", len(opts))
	}
	wantKeys := []string{"count", "logs", "mode", "name"}
	for i, key := range wantKeys {
		if opts[i].Key != key {
			t.Errorf("option %d key = %q, want %q", i, opts[i].Key, key)
		}
	}
	if opts[0].Type != OptionSlider || opts[0].Min != 1 || opts[0].Max != 50 {
		t.Errorf("slider opt = %+v", opts[0])
	}
}

func TestValidateAcceptsGoodValues(t *testing.T) {
	ob := buildSchema()
	err := ob.Validate(map[string]any{
		"count": 25,
		"logs":  []string{"oak", "yew"},
		"mode":  "bank",
		"name":  "alice",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateAcceptsJSONShapes(t *testing.T) {
	// A JSON decoder produces float64 numbers and []any lists.
	ob := buildSchema()
	err := ob.Validate(map[string]any{
		"count": float64(10),
		"logs":  []any{"willow"},
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	ob := buildSchema()
	cases := []struct {
		name   string
		values map[string]any
	}{
		{"unknown key", map[string]any{"bogus": 1}},
		{"slider out of range", map[string]any{"count": 51}},
		{"slider wrong type", map[string]any{"count": "many"}},
		{"checkbox outside values", map[string]any{"logs": []string{"magic"}}},
		{"checkbox wrong type", map[string]any{"logs": 7}},
		{"dropdown outside values", map[string]any{"mode": "afk"}},
		{"text wrong type", map[string]any{"name": 12}},
	}
	for _, tc := range cases {
		if err := ob.Validate(tc.values); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestDuplicateKeyLastWins(t *testing.T) {
	ob := NewOptionsBuilder()
	ob.AddSlider("n", "First", 0, 10)
	ob.AddSlider("n", "Second", 0, 99)

	opts := ob.Options()
	if len(opts) != 1 {
		t.Fatalf("got %d options, want 1", len(opts))
	}
	if opts[0].Title != "Second" || opts[0].Max != 99 {
		t.Errorf("duplicate key kept %+v, want the later declaration", opts[0])
	}
}
