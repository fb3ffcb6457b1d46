package scorer

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "acme studios", "acme studios", 1},
		{"both empty", "", "", 0},
		{"one empty", "acme", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"one edit", "acme co", "acme co.", 0.875},
		{"half", "ab", "ax", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatio_Symmetric(t *testing.T) {
	if Ratio("herman miller", "herman miler") != Ratio("herman miler", "herman miller") {
		t.Error("Ratio must be symmetric")
	}
}

func TestMentions(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		value     string
		threshold float64
		want      bool
	}{
		{"exact containment", "a genuine vitra chair", "vitra", 0.8, true},
		{"fuzzy window match", "made by herman miler in usa", "herman miller", 0.8, true},
		{"no mention", "a generic office chair", "vitra", 0.8, false},
		{"empty value", "some text", "", 0.8, false},
		{"empty text", "", "vitra", 0.8, false},
		{"value longer than text", "short", "a much longer brand name", 0.8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mentions(tt.text, tt.value, tt.threshold); got != tt.want {
				t.Errorf("Mentions(%q, %q) = %v, want %v", tt.text, tt.value, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
