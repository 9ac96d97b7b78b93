package keywords

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultMinScore is the minimum relevance score for a keyword to be kept.
	DefaultMinScore = 0.1

	// DefaultMaxTerms caps how many keywords are returned per text.
	DefaultMaxTerms = 10

	// Kind identifies how keyword scores were computed.
	Kind = "tfidf"
)

// Keyword is a scored term extracted from text.
type Keyword struct {
	Term  string  // The term (unigram or bigram)
	Kind  string  // Scoring method, always "tfidf"
	Score float64 // Relevance in [0, 1]
}

// Options configures keyword extraction.
type Options struct {
	MinScore float64 // Minimum score to keep (default 0.1)
	MaxTerms int     // Maximum keywords returned (default 10)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.MaxTerms <= 0 {
		opts.MaxTerms = DefaultMaxTerms
	}
	return opts
}

// Extract returns the highest-scoring keywords in text.
//
// Text is lowercased and tokenized, stopwords and punctuation are dropped,
// and tokens are folded to a base form. Unigrams and bigrams are scored by
// L2-normalized term frequency, so scores are comparable across texts of
// different lengths. Results are ordered score descending, then term
// ascending, making extraction deterministic.
func Extract(text string, opts Options) []Keyword {
	opts = opts.WithDefaults()

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	freq := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		freq[tok]++
		if i+1 < len(tokens) {
			freq[tok+" "+tokens[i+1]]++
		}
	}

	var norm float64
	for _, n := range freq {
		norm += float64(n) * float64(n)
	}
	norm = math.Sqrt(norm)

	keywords := make([]Keyword, 0, len(freq))
	for term, n := range freq {
		score := float64(n) / norm
		if score >= opts.MinScore {
			keywords = append(keywords, Keyword{Term: term, Kind: Kind, Score: score})
		}
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Term < keywords[j].Term
	})

	if len(keywords) > opts.MaxTerms {
		keywords = keywords[:opts.MaxTerms]
	}
	return keywords
}

// Tokenize splits text into normalized tokens: lowercase, punctuation
// stripped, stopwords and single characters removed, suffixes folded.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || stopwords[w] {
			continue
		}
		w = stem(w)
		if len(w) < 2 || stopwords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// stem folds common English suffixes so that close word forms share a term.
// This is a light-weight alternative to full lemmatization: plural "-s",
// "-es", "-ies", plus "-ing" and "-ed" verb forms.
func stem(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "es") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return w[:len(w)-2]
	}
	return w
}
