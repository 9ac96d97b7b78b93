// Package keywords extracts scored search terms from block previews.
//
// The server tags every text block with its most relevant terms so that
// blocks can be found by keyword without decrypting stored content. Tags are
// computed from the plaintext preview before encryption.
//
// Extraction runs in three steps:
//
//  1. Tokenize: lowercase, strip punctuation, drop stopwords, fold suffixes
//  2. Count unigram and bigram frequencies
//  3. Score by L2-normalized term frequency, keep the top terms
//
// # Usage
//
//	kws := keywords.Extract(preview, keywords.Options{})
//	for _, kw := range kws {
//	    fmt.Printf("%s (%.2f)\n", kw.Term, kw.Score)
//	}
package keywords
