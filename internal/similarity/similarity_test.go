package similarity

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{
			name: "identical strings",
			a:    "amazon",
			b:    "amazon",
			want: 0,
		},
		{
			name: "empty to empty",
			a:    "",
			b:    "",
			want: 0,
		},
		{
			name: "empty to non-empty",
			a:    "",
			b:    "target",
			want: 6,
		},
		{
			name: "non-empty to empty",
			a:    "target",
			b:    "",
			want: 6,
		},
		{
			name: "single deletion",
			a:    "amazon",
			b:    "amazn",
			want: 1,
		},
		{
			name: "single substitution",
			a:    "kitten",
			b:    "mitten",
			want: 1,
		},
		{
			name: "classic kitten sitting",
			a:    "kitten",
			b:    "sitting",
			want: 3,
		},
		{
			name: "unrelated merchants",
			a:    "amazon",
			b:    "walmart",
			want: 6,
		},
		{
			name: "case matters at this layer",
			a:    "Amazon",
			b:    "amazon",
			want: 1,
		},
		{
			name: "multi-byte runes count as single edits",
			a:    "café",
			b:    "cafe",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levenshtein(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLevenshtein_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"amazon", "amazn"},
		{"coffee shop", "cofee shop"},
		{"", "starbucks"},
		{"whole foods", "trader joes"},
	}

	for _, p := range pairs {
		ab := Levenshtein(p[0], p[1])
		ba := Levenshtein(p[1], p[0])
		if ab != ba {
			t.Errorf("Levenshtein not symmetric for (%q, %q): %d != %d", p[0], p[1], ab, ba)
		}
	}
}

func TestLevenshtein_TriangleInequality(t *testing.T) {
	triples := [][3]string{
		{"amazon", "amazn", "walmart"},
		{"starbucks", "star", "bucks"},
		{"", "coffee", "coffee shop"},
		{"target", "tarjet", "trader joes"},
	}

	for _, tr := range triples {
		ab := Levenshtein(tr[0], tr[1])
		bc := Levenshtein(tr[1], tr[2])
		ac := Levenshtein(tr[0], tr[2])
		if ac > ab+bc {
			t.Errorf("triangle inequality violated for %v: d(a,c)=%d > d(a,b)+d(b,c)=%d", tr, ac, ab+bc)
		}
	}
}
