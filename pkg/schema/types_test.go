package schema

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), "", false},
		{String(), 42.0, true},
		{String(), nil, true},
		{Number(), 3.14, false},
		{Number(), 3, false},
		{Number(), "3", true},
		{FiniteNumber(), 120.0, false},
		{FiniteNumber(), math.NaN(), true},
		{FiniteNumber(), math.Inf(1), true},
		{Bool(), true, false},
		{Bool(), "true", true},
		{Slice(String()), []any{"a", "b"}, false},
		{Slice(String()), []string{"a"}, false},
		{Slice(String()), []any{"a", 1.0}, true},
		{Slice(String()), "a", true},
		{Slice(String()), nil, true},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceName(t *testing.T) {
	if got := Slice(String()).Name(); got != "[string]" {
		t.Errorf("Name() = %q, want %q", got, "[string]")
	}
}

func TestValidate_OnlyKnownPresentFields(t *testing.T) {
	errs := Validate(PayloadSchema("decision"), map[string]any{
		"options": "fight or flee",
		"label":   7.0,
		"mood":    []any{1.0},
	})
	if len(errs) != 2 {
		t.Fatalf("Validate() = %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Key != "label" || errs[1].Key != "options" {
		t.Errorf("errors should be sorted by key, got %q, %q", errs[0].Key, errs[1].Key)
	}

	if errs := Validate(PayloadSchema("message"), map[string]any{}); len(errs) != 0 {
		t.Errorf("absent fields must not fail, got %v", errs)
	}
}

func TestSchemaMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(PayloadSchema("decision"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"condition":"string","label":"string","options":"[string]"}`
	if string(raw) != want {
		t.Errorf("Marshal() = %s, want %s", raw, want)
	}
}
