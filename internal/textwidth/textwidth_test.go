package textwidth_test

import (
	"testing"

	"github.com/alnah/go-makdo/internal/textwidth"
)

func TestOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "abc", 3},
		{"kanji", "総則", 4},
		{"full width digits", "１２", 4},
		{"half width katakana", "ｱｲ", 2},
		{"mixed", "第1条", 5},
		{"tab from zero", "\t", 8},
		{"tab after text", "ab\tc", 9},
		{"ambiguous greek counts one", "α", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := textwidth.Of(tt.in); got != tt.want {
				t.Errorf("Of(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrinted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"ascii only", "ab", 2},
		{"kanji only", "総則", 4},
		{"script change adds half", "a総", 3.5},
		{"ambiguous symbol doubled", "※", 2},
		{"circled digit doubled", "①", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := textwidth.Printed(tt.in); got != tt.want {
				t.Errorf("Printed(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
