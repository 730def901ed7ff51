// Package analytics computes keyword statistics over record text.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minWordLength drops one-letter tokens.
const minWordLength = 2

// WordFrequency counts lowercase words in text, ignoring stopwords,
// surrounding punctuation and bare numbers.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) < minWordLength || isNumber(word) {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// Merge sums word counts from many documents.
func Merge(counts ...map[string]int) map[string]int {
	total := make(map[string]int)
	for _, c := range counts {
		for word, n := range c {
			total[word] += n
		}
	}
	return total
}

// CorpusFrequency maps WordFrequency over texts and merges the results.
func CorpusFrequency(texts []string) map[string]int {
	partial := make([]map[string]int, 0, len(texts))
	for _, t := range texts {
		partial = append(partial, WordFrequency(t))
	}
	return Merge(partial...)
}

type wordCount struct {
	Word  string
	Count int
}

// TopKeywords returns up to n entries formatted "word:count", highest
// count first and alphabetical among ties. Malformed tokens are skipped.
func TopKeywords(counts map[string]int, n int) []string {
	ranked := rank(counts)
	if n < len(ranked) {
		ranked = ranked[:max(n, 0)]
	}

	keywords := make([]string, len(ranked))
	for i, wc := range ranked {
		keywords[i] = fmt.Sprintf("%s:%d", wc.Word, wc.Count)
	}
	return keywords
}

func rank(counts map[string]int) []wordCount {
	ranked := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		if isValidKeyword(w) {
			ranked = append(ranked, wordCount{w, c})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	return ranked
}

// isValidKeyword rejects tokens with trailing separators or unbalanced
// brackets and quotes. Technical terms like x_train are kept.
func isValidKeyword(word string) bool {
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}, {"{", "}"}} {
		if strings.Contains(word, pair[0]) != strings.Contains(word, pair[1]) {
			return false
		}
	}
	return strings.Count(word, `"`)%2 == 0
}

func isNumber(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
