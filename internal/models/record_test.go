package models

import (
	"strings"
	"testing"
)

func TestNormalizeHash(t *testing.T) {
	upper := strings.Repeat("AB", 32)
	got := NormalizeHash("  " + upper + " ")
	if got != strings.Repeat("ab", 32) {
		t.Fatalf("unexpected normalized hash: %q", got)
	}
}

func TestIsValidHash(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid", strings.Repeat("a1", 32), true},
		{"too short", strings.Repeat("a", 63), false},
		{"too long", strings.Repeat("a", 65), false},
		{"non hex", strings.Repeat("g", 64), false},
		{"uppercase rejected", strings.Repeat("A", 64), false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidHash(tc.value); got != tc.want {
				t.Fatalf("IsValidHash(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
