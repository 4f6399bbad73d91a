package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if math.Abs(db+6) > 1e-10 {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
		{1e-35, 0},
		{0.25, 0.25},
	}

	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Fatalf("Sanitize(%v) = %v, want %v", c.in, got, c.want)
		}
	}

	if IsFinite(math.NaN()) || !IsFinite(-3) {
		t.Fatal("IsFinite misclassified a value")
	}
}

func TestMoveTowards(t *testing.T) {
	if got := MoveTowards(0, 1, 0.25, 0.5); got != 0.25 {
		t.Fatalf("rising step = %v, want 0.25", got)
	}
	if got := MoveTowards(1, 0, 0.25, 0.5); got != 0.5 {
		t.Fatalf("falling step = %v, want 0.5", got)
	}
	if got := MoveTowards(0.9, 1, 0.25, 0.5); got != 1 {
		t.Fatalf("step must not overshoot, got %v", got)
	}
	if got := MoveTowards(0.2, 0, 0.25, 0.5); got != 0 {
		t.Fatalf("step must not undershoot, got %v", got)
	}
}
