package themes

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// FallbackTheme is returned when nothing usable can be extracted. Themes
// only narrow the candidate search, so a degenerate document degrades the
// search, never the job.
const FallbackTheme = "general"

var (
	wordPattern     = regexp.MustCompile(`\b\w{4,}\b`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]?`)
)

var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "they": {}, "their": {}, "there": {}, "which": {}, "would": {},
	"about": {}, "other": {}, "these": {}, "those": {}, "also": {}, "into": {},
	"more": {}, "some": {}, "such": {}, "than": {}, "then": {}, "when": {},
	"what": {}, "where": {}, "will": {}, "over": {}, "only": {}, "very": {},
	"because": {}, "between": {}, "through": {}, "after": {}, "before": {},
	"while": {}, "could": {}, "should": {}, "does": {}, "each": {}, "most": {},
}

// Extract derives up to maxThemes salient terms from the document in a
// single lexical pass: multi-word capitalized phrases first (likely proper
// nouns), then the most frequent long words. No embeddings involved, so it
// runs before the provider is ever called.
func Extract(text string, maxThemes int) []string {
	if maxThemes <= 0 {
		maxThemes = 3
	}
	if strings.TrimSpace(text) == "" {
		return []string{FallbackTheme}
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(theme string) bool {
		key := strings.ToLower(theme)
		if _, dup := seen[key]; dup {
			return len(out) < maxThemes
		}
		seen[key] = struct{}{}
		out = append(out, theme)
		return len(out) < maxThemes
	}

	for _, phrase := range capitalizedPhrases(text) {
		if !add(phrase) {
			return out
		}
	}

	for _, word := range frequentWords(text) {
		if !add(word) {
			return out
		}
	}

	if len(out) == 0 {
		return []string{FallbackTheme}
	}
	return out
}

// SearchPhrases picks the most distinctive sentences to use as search terms,
// scored by vocabulary richness and average word length - longer, rarer
// words are the best plagiarism probes.
func SearchPhrases(text string, maxPhrases int) []string {
	if maxPhrases <= 0 {
		return nil
	}
	sentences := sentencePattern.FindAllString(text, -1)

	type scored struct {
		sentence string
		score    float64
	}
	var candidates []scored
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) < 20 {
			continue
		}
		words := wordPattern.FindAllString(strings.ToLower(s), -1)
		if len(words) < 3 {
			continue
		}
		unique := make(map[string]struct{}, len(words))
		total := 0
		for _, w := range words {
			unique[w] = struct{}{}
			total += len(w)
		}
		avgLen := float64(total) / float64(len(words))
		candidates = append(candidates, scored{s, float64(len(unique)) * avgLen / 5})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if maxPhrases > len(candidates) {
		maxPhrases = len(candidates)
	}
	out := make([]string, 0, maxPhrases)
	for i := 0; i < maxPhrases; i++ {
		out = append(out, candidates[i].sentence)
	}
	return out
}

// capitalizedPhrases finds runs of two or more capitalized words that do not
// open a sentence.
func capitalizedPhrases(text string) []string {
	var phrases []string
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		words := strings.Fields(sentence)
		run := []string{}
		for i, w := range words {
			trimmed := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
			if i > 0 && len(trimmed) > 1 && unicode.IsUpper([]rune(trimmed)[0]) {
				run = append(run, trimmed)
				continue
			}
			if len(run) >= 2 {
				phrases = append(phrases, strings.Join(run, " "))
			}
			run = run[:0]
		}
		if len(run) >= 2 {
			phrases = append(phrases, strings.Join(run, " "))
		}
	}
	return phrases
}

func frequentWords(text string) []string {
	counts := make(map[string]int)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		counts[w]++
	}

	type wc struct {
		word  string
		count int
	}
	ranked := make([]wc, 0, len(counts))
	for w, c := range counts {
		if c >= 2 {
			ranked = append(ranked, wc{w, c})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.word)
	}
	return out
}
