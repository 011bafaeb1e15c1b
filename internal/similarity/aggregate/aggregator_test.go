package aggregate

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

func record(url string, start, end int, score float32) matchModel.MatchRecord {
	return matchModel.MatchRecord{
		QueryChunk: matchModel.Chunk{StartOffset: start, EndOffset: end},
		Entry:      matchModel.IndexEntry{SourceURL: url},
		Score:      score,
	}
}

func TestAggregate_MergesOverlappingSpans(t *testing.T) {
	doc := strings.Repeat("x", 100)
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, 30, 0.85),
		record("https://a.example", 20, 50, 0.92),
	}

	report := Aggregate(doc, records, 0)

	if len(report.Matches) != 1 {
		t.Fatalf("expected 1 source match, got %d", len(report.Matches))
	}
	m := report.Matches[0]
	if len(m.Spans) != 1 {
		t.Fatalf("expected 1 merged span, got %d", len(m.Spans))
	}
	if m.Spans[0].StartOffset != 0 || m.Spans[0].EndOffset != 50 {
		t.Errorf("merged span is [%d,%d), want [0,50)", m.Spans[0].StartOffset, m.Spans[0].EndOffset)
	}
	// the merged span carries the max of the constituent scores
	if m.SimilarityScore != 0.92 {
		t.Errorf("merged score is %f, want 0.92", m.SimilarityScore)
	}
}

func TestAggregate_GapToleranceBridgesSlivers(t *testing.T) {
	doc := strings.Repeat("x", 200)
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, 40, 0.9),
		record("https://a.example", 50, 90, 0.9), // 10-byte gap
	}

	report := Aggregate(doc, records, 24)
	if len(report.Matches[0].Spans) != 1 {
		t.Errorf("gap within tolerance not bridged: %d spans", len(report.Matches[0].Spans))
	}

	report = Aggregate(doc, records, 5)
	if len(report.Matches[0].Spans) != 2 {
		t.Errorf("gap beyond tolerance was bridged: %d spans", len(report.Matches[0].Spans))
	}
}

func TestAggregate_PercentageIsCoverage(t *testing.T) {
	doc := strings.Repeat("x", 200)
	// two sources over an overlapping region: the overlap counts once
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, 50, 0.9),
		record("https://b.example", 25, 100, 0.85),
	}

	report := Aggregate(doc, records, 0)

	covered := 0
	for _, s := range report.Spans {
		covered += s.Len()
	}
	want := float64(covered) / float64(len(doc)) * 100
	if report.PlagiarismPercentage != want {
		t.Errorf("percentage %f does not equal coverage %f", report.PlagiarismPercentage, want)
	}
	// union of [0,50) and [25,100) is 100 of 200 bytes
	if report.PlagiarismPercentage != 50 {
		t.Errorf("percentage is %f, want 50", report.PlagiarismPercentage)
	}
}

func TestAggregate_PercentageBounds(t *testing.T) {
	doc := strings.Repeat("x", 50)
	// spans overrunning the document are clamped, never above 100
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, 500, 0.9),
		record("https://b.example", -10, 60, 0.9),
	}

	report := Aggregate(doc, records, 0)
	if report.PlagiarismPercentage < 0 || report.PlagiarismPercentage > 100 {
		t.Errorf("percentage %f out of [0,100]", report.PlagiarismPercentage)
	}
	if report.PlagiarismPercentage != 100 {
		t.Errorf("full-document match should be 100, got %f", report.PlagiarismPercentage)
	}
}

func TestAggregate_NoRecords(t *testing.T) {
	doc := "An entirely original composition."
	report := Aggregate(doc, nil, 24)

	if report.PlagiarismPercentage != 0 {
		t.Errorf("percentage is %f, want 0", report.PlagiarismPercentage)
	}
	if report.Matches == nil || len(report.Matches) != 0 {
		t.Errorf("matches should be an empty slice, got %v", report.Matches)
	}
	if report.HighlightedText != doc {
		t.Errorf("highlighted text altered for a clean document")
	}
}

func TestAggregate_RankingIsDeterministic(t *testing.T) {
	doc := strings.Repeat("x", 300)
	records := []matchModel.MatchRecord{
		record("https://weak.example", 200, 250, 0.81),
		record("https://strong.example", 100, 150, 0.97),
		record("https://mid.example", 0, 50, 0.88),
	}

	first := Aggregate(doc, records, 0)
	if first.Matches[0].SourceURL != "https://strong.example" {
		t.Errorf("strongest source not ranked first: %s", first.Matches[0].SourceURL)
	}

	// shuffled input produces the identical report
	shuffled := []matchModel.MatchRecord{records[2], records[0], records[1]}
	second := Aggregate(doc, shuffled, 0)
	if !reflect.DeepEqual(first.Matches, second.Matches) {
		t.Error("aggregation is input-order dependent")
	}
	if first.PlagiarismPercentage != second.PlagiarismPercentage {
		t.Error("percentage is input-order dependent")
	}
}

func TestAggregate_TieBreaksByOffsetThenURL(t *testing.T) {
	doc := strings.Repeat("x", 300)
	records := []matchModel.MatchRecord{
		record("https://b.example", 100, 150, 0.9),
		record("https://a.example", 100, 150, 0.9),
		record("https://c.example", 0, 50, 0.9),
	}

	report := Aggregate(doc, records, 0)
	got := []string{report.Matches[0].SourceURL, report.Matches[1].SourceURL, report.Matches[2].SourceURL}
	want := []string{"https://c.example", "https://a.example", "https://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ranking = %v, want %v", got, want)
	}
}

func TestAggregate_HighlightedText(t *testing.T) {
	doc := "The cat sat on the mat. Nobody disputes this."
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, 23, 0.95),
	}

	report := Aggregate(doc, records, 0)

	want := highlightOpen + "The cat sat on the mat." + highlightClose + " Nobody disputes this."
	if report.HighlightedText != want {
		t.Errorf("highlighted text:\n got %q\nwant %q", report.HighlightedText, want)
	}
	// stripping the markers recovers the original document
	stripped := strings.ReplaceAll(report.HighlightedText, highlightOpen, "")
	stripped = strings.ReplaceAll(stripped, highlightClose, "")
	if stripped != doc {
		t.Errorf("markers are not purely additive")
	}
}

func TestAggregate_SnippetTruncated(t *testing.T) {
	doc := strings.Repeat("lengthy verbatim passage ", 40)
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, len(doc), 0.95),
	}

	report := Aggregate(doc, records, 0)
	snippet := report.Matches[0].TextSnippet
	if len(snippet) > 210 {
		t.Errorf("snippet is %d bytes, should be truncated", len(snippet))
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("truncated snippet should end with ellipsis: %q", snippet[len(snippet)-10:])
	}
}

func TestAggregate_SnippetTruncationKeepsValidUTF8(t *testing.T) {
	// no spaces, all multibyte runes: the hard cut has to land on a rune
	// boundary instead of slicing one in half
	doc := strings.Repeat("日本語", 120)
	records := []matchModel.MatchRecord{
		record("https://a.example", 0, len(doc), 0.95),
	}

	report := Aggregate(doc, records, 0)
	snippet := report.Matches[0].TextSnippet
	if !utf8.ValidString(snippet) {
		t.Errorf("snippet contains a broken rune: %q", snippet)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("long snippet should be truncated: %q", snippet)
	}
}
