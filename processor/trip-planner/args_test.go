package tripplanner

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"float64", 48.8584, 48.8584, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 3, 3, true},
		{"int64", int64(-7), -7, true},
		{"json number", json.Number("2.2945"), 2.2945, true},
		{"numeric string", " 40.7812 ", 40.7812, true},
		{"bad json number", json.Number("abc"), 0, false},
		{"word", "north", 0, false},
		{"NaN", math.NaN(), 0, false},
		{"NaN string", "NaN", 0, false},
		{"infinity", math.Inf(1), 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toFloat(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("toFloat(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("toFloat(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		input  any
		want   int
		wantOK bool
	}{
		{3, 3, true},
		{json.Number("12"), 12, true},
		{float64(4), 4, true},
		{"5", 5, true},
		{2.5, 0, false},
		{json.Number("1.5"), 0, false},
		{"first", 0, false},
	}

	for _, tt := range tests {
		got, ok := toInt(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("toInt(%v) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFirstFloat_UsesFirstPresentKey(t *testing.T) {
	args := map[string]any{"latitude": "bad", "lat": 1.0}
	if _, ok := firstFloat(args, "latitude", "lat"); ok {
		t.Error("a present but invalid key should not fall through to the next key")
	}
	if got, ok := firstFloat(args, "lat", "latitude"); !ok || got != 1.0 {
		t.Errorf("firstFloat() = (%v, %v), want (1, true)", got, ok)
	}
}

func TestStringArg(t *testing.T) {
	args := map[string]any{
		"blank":  "   ",
		"name":   " Louvre ",
		"number": json.Number("3"),
		"other":  42,
	}
	if got := stringArg(args, "blank", "name"); got != "Louvre" {
		t.Errorf("stringArg() = %q, want Louvre", got)
	}
	if got := stringArg(args, "number"); got != "3" {
		t.Errorf("stringArg(number) = %q, want 3", got)
	}
	if got := stringArg(args, "other", "missing"); got != "" {
		t.Errorf("stringArg(other) = %q, want empty", got)
	}
}
