package aggregate

import (
	"strings"

	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

const (
	highlightOpen  = "<span class='highlight'>"
	highlightClose = "</span>"
)

// renderHighlights wraps each merged span in a match marker. Spans must be
// sorted and non-overlapping; the original text between and inside markers
// is never re-split or reordered.
func renderHighlights(docText string, spans []matchModel.HighlightSpan) string {
	if len(spans) == 0 {
		return docText
	}

	var b strings.Builder
	b.Grow(len(docText) + len(spans)*(len(highlightOpen)+len(highlightClose)))

	cursor := 0
	for _, s := range spans {
		b.WriteString(docText[cursor:s.StartOffset])
		b.WriteString(highlightOpen)
		b.WriteString(docText[s.StartOffset:s.EndOffset])
		b.WriteString(highlightClose)
		cursor = s.EndOffset
	}
	b.WriteString(docText[cursor:])
	return b.String()
}
