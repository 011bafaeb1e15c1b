package aggregate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

// Report is the finished document-level result the presentation layer
// consumes. Field meanings are locked by the API contract.
type Report struct {
	PlagiarismPercentage float64
	Matches              []matchModel.SourceMatch
	Spans                []matchModel.HighlightSpan
	HighlightedText      string
}

type scoredSpan struct {
	start, end int
	score      float32
}

// Aggregate turns the raw per-chunk match records into the final report:
// dedup by source, merge overlapping spans, compute the coverage percentage
// and render the highlighted copy of the document. Deterministic for a given
// record set.
func Aggregate(docText string, records []matchModel.MatchRecord, gapTolerance int) Report {
	if len(records) == 0 || len(docText) == 0 {
		return Report{HighlightedText: docText, Matches: []matchModel.SourceMatch{}}
	}

	bySource := make(map[string][]scoredSpan)
	for _, r := range records {
		start, end := clampSpan(r.QueryChunk.StartOffset, r.QueryChunk.EndOffset, len(docText))
		if start >= end {
			continue
		}
		bySource[r.Entry.SourceURL] = append(bySource[r.Entry.SourceURL], scoredSpan{start, end, r.Score})
	}

	matches := make([]matchModel.SourceMatch, 0, len(bySource))
	var allSpans []matchModel.HighlightSpan
	for url, spans := range bySource {
		merged := mergeSpans(spans, gapTolerance)
		if len(merged) == 0 {
			continue
		}

		best := merged[0]
		outSpans := make([]matchModel.HighlightSpan, 0, len(merged))
		for _, s := range merged {
			if s.score > best.score {
				best = s
			}
			outSpans = append(outSpans, matchModel.HighlightSpan{StartOffset: s.start, EndOffset: s.end})
		}
		allSpans = append(allSpans, outSpans...)

		matches = append(matches, matchModel.SourceMatch{
			SourceURL:       url,
			TextSnippet:     snippet(docText, best.start, best.end),
			SimilarityScore: best.score,
			Spans:           outSpans,
		})
	}

	// rank: strongest match first, earliest span breaks ties, URL keeps the
	// ordering stable across runs
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SimilarityScore != matches[j].SimilarityScore {
			return matches[i].SimilarityScore > matches[j].SimilarityScore
		}
		if matches[i].Spans[0].StartOffset != matches[j].Spans[0].StartOffset {
			return matches[i].Spans[0].StartOffset < matches[j].Spans[0].StartOffset
		}
		return matches[i].SourceURL < matches[j].SourceURL
	})

	// the document-level spans are the union across sources - a passage
	// matched by two sources counts once
	global := mergeHighlightSpans(allSpans)

	covered := 0
	for _, s := range global {
		covered += s.Len()
	}
	percentage := float64(covered) / float64(len(docText)) * 100
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	return Report{
		PlagiarismPercentage: percentage,
		Matches:              matches,
		Spans:                global,
		HighlightedText:      renderHighlights(docText, global),
	}
}

// mergeSpans merges a source's spans that overlap or sit closer than
// gapTolerance, so one copied paragraph does not fragment into slivers. The
// merged span carries the max score of its constituents - a strong match is
// not diluted by weaker overlapping ones.
func mergeSpans(spans []scoredSpan, gapTolerance int) []scoredSpan {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	merged := []scoredSpan{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end+gapTolerance {
			if s.end > last.end {
				last.end = s.end
			}
			if s.score > last.score {
				last.score = s.score
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func mergeHighlightSpans(spans []matchModel.HighlightSpan) []matchModel.HighlightSpan {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].StartOffset != spans[j].StartOffset {
			return spans[i].StartOffset < spans[j].StartOffset
		}
		return spans[i].EndOffset < spans[j].EndOffset
	})
	merged := []matchModel.HighlightSpan{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.StartOffset <= last.EndOffset {
			if s.EndOffset > last.EndOffset {
				last.EndOffset = s.EndOffset
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func clampSpan(start, end, docLen int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > docLen {
		end = docLen
	}
	return start, end
}

func snippet(docText string, start, end int) string {
	const maxSnippet = 200
	s := docText[start:end]
	if len(s) <= maxSnippet {
		return s
	}
	cut := maxSnippet
	if i := strings.LastIndexByte(s[:cut], ' '); i > maxSnippet/2 {
		cut = i
	}
	// a hard cut may land inside a multibyte rune
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
