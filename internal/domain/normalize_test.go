package domain

import "testing"

func TestNormalizeLatin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain word", input: "rosa", want: "rosa"},
		{name: "lowercase", input: "Rosa", want: "rosa"},
		{name: "macron stripped", input: "rosā", want: "rosa"},
		{name: "all macrons", input: "īnsulā", want: "insula"},
		{name: "breve stripped", input: "rosă", want: "rosa"},
		{name: "v folds to u", input: "veni", want: "ueni"},
		{name: "j folds to i", input: "Julius", want: "iulius"},
		{name: "uppercase V", input: "Vita", want: "uita"},
		{name: "combining macron", input: "rosā", want: "rosa"},
		{name: "mixed variants", input: "cīvis", want: "ciuis"},
		{name: "empty string", input: "", want: ""},
		{name: "punctuation untouched", input: ".,;", want: ".,;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeLatin(tt.input); got != tt.want {
				t.Errorf("NormalizeLatin(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Normalization must be stable under repeated application.
func TestNormalizeLatin_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"rosā", "Vīta", "Jūlius", "cīvis", "", "rosām", "aquā;"}
	for _, in := range inputs {
		once := NormalizeLatin(in)
		twice := NormalizeLatin(once)
		if once != twice {
			t.Errorf("NormalizeLatin not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestIsPunctuationToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{".", true},
		{",", true},
		{"—", true},
		{"?!", true},
		{"", true},
		{"rosa", false},
		{"rosā", false},
		{"a.", false},
		{"123", true},
	}
	for _, tt := range tests {
		if got := IsPunctuationToken(tt.input); got != tt.want {
			t.Errorf("IsPunctuationToken(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
