// Package keyphrase extracts short candidate phrases (tag proposals) from free text.
package keyphrase

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxCandidates caps the number of phrases returned by Extract.
	DefaultMaxCandidates = 20
	// MinTokens is the smallest whitespace token count worth extracting from.
	MinTokens = 5
	// minTokenRunes drops single-character tokens.
	minTokenRunes = 2
)

// TooShort reports whether text has fewer than MinTokens whitespace-separated tokens.
func TooShort(text string) bool {
	return len(strings.Fields(text)) < MinTokens
}

type candidate struct {
	phrase string
	count  int
}

// Extract returns up to maxCandidates distinct unigrams and bigrams from text, most frequent
// first, ties in order of first occurrence. Stop words are removed before bigrams are formed.
// Degenerate input (too short, nothing but stop words) yields nil.
func Extract(text string, maxCandidates int) []string {
	if TooShort(text) {
		return nil
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	tokens := contentTokens(text)
	if len(tokens) == 0 {
		return nil
	}

	var cands []candidate
	index := make(map[string]int, 2*len(tokens))
	add := func(phrase string) {
		if i, ok := index[phrase]; ok {
			cands[i].count++
			return
		}
		index[phrase] = len(cands)
		cands = append(cands, candidate{phrase: phrase, count: 1})
	}

	for i, tok := range tokens {
		add(tok)
		if i+1 < len(tokens) {
			add(tok + " " + tokens[i+1])
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].count > cands[j].count
	})
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.phrase
	}
	return out
}

// contentTokens lowercases text, splits it on anything that is not a letter or digit,
// and drops short tokens and stop words.
func contentTokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTokenRunes || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}
