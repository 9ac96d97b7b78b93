package keywords

import (
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"stopwords removed",
			"the quick brown fox jumps over the lazy dog",
			[]string{"quick", "brown", "fox", "jump", "lazy", "dog"},
		},
		{
			"punctuation stripped",
			"hello, world! storage; blocks.",
			[]string{"hello", "world", "storage", "block"},
		},
		{
			"case folded",
			"Secure STORAGE Service",
			[]string{"secure", "storage", "service"},
		},
		{
			"empty",
			"",
			nil,
		},
		{
			"only stopwords",
			"the and of to",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"blocks", "block"},
		{"policies", "policy"},
		{"encrypted", "encrypt"},
		{"uploading", "upload"},
		{"classes", "class"},
		{"storage", "storage"},
		{"data", "data"},
		{"was", "was"}, // too short to strip
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := stem(tt.input); got != tt.want {
				t.Errorf("stem(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	text := strings.Repeat("secure storage ", 5) + "with encrypted blocks and keyword search"

	kws := Extract(text, Options{})
	if len(kws) == 0 {
		t.Fatal("expected keywords")
	}
	if len(kws) > DefaultMaxTerms {
		t.Errorf("expected at most %d keywords, got %d", DefaultMaxTerms, len(kws))
	}

	// The dominant term should rank first.
	if kws[0].Term != "secure" && kws[0].Term != "storage" && kws[0].Term != "secure storage" {
		t.Errorf("expected a dominant term first, got %q", kws[0].Term)
	}

	for _, kw := range kws {
		if kw.Score < DefaultMinScore {
			t.Errorf("keyword %q below min score: %f", kw.Term, kw.Score)
		}
		if kw.Kind != Kind {
			t.Errorf("unexpected kind %q", kw.Kind)
		}
	}

	// Scores are sorted descending.
	for i := 1; i < len(kws); i++ {
		if kws[i].Score > kws[i-1].Score {
			t.Error("keywords not sorted by score")
			break
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "alpha beta gamma delta alpha beta gamma alpha beta alpha"

	a := Extract(text, Options{})
	b := Extract(text, Options{})

	if len(a) != len(b) {
		t.Fatalf("extraction not deterministic: %d vs %d keywords", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("keyword %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract("", Options{}); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := Extract("the of and", Options{}); got != nil {
		t.Errorf("expected nil for stopword-only text, got %v", got)
	}
}

func TestExtract_MaxTerms(t *testing.T) {
	// Enough distinct words that the cap binds.
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"

	kws := Extract(text, Options{MinScore: 0.01, MaxTerms: 3})
	if len(kws) != 3 {
		t.Errorf("expected 3 keywords, got %d", len(kws))
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.MinScore != DefaultMinScore {
		t.Errorf("expected default min score %f, got %f", DefaultMinScore, opts.MinScore)
	}
	if opts.MaxTerms != DefaultMaxTerms {
		t.Errorf("expected default max terms %d, got %d", DefaultMaxTerms, opts.MaxTerms)
	}

	custom := Options{MinScore: 0.5, MaxTerms: 3}.WithDefaults()
	if custom.MinScore != 0.5 || custom.MaxTerms != 3 {
		t.Error("WithDefaults should not override set values")
	}
}
