package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

// boundaryTolerance is how far past the target length a chunk may run while
// looking for a whitespace boundary before hard-cutting.
const boundaryTolerance = 48

// Split cuts text into overlapping, offset-tracked chunks of at most
// targetLen+boundaryTolerance bytes. The union of the produced spans covers
// the whole input, and consecutive chunks share roughly overlap bytes so a
// copied passage sitting on a boundary still lands fully inside one chunk.
// Empty input yields no chunks.
func Split(sourceDocId, text string, targetLen, overlap int) []matchModel.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if targetLen <= 0 {
		targetLen = 400
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= targetLen {
		overlap = targetLen / 2
	}

	var chunks []matchModel.Chunk
	start := 0
	for start < len(text) {
		end := cutPoint(text, start, targetLen)

		chunks = append(chunks, matchModel.Chunk{
			Id:          uuid.New().String(),
			SourceDocId: sourceDocId,
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
		})

		if end == len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		// never start mid-rune
		for next > 0 && next < len(text) && !utf8.RuneStart(text[next]) {
			next--
		}
		// the rune backoff can land on start again when the chunk opens with
		// a multibyte rune; step over that rune so every iteration advances
		if next <= start {
			_, size := utf8.DecodeRuneInString(text[start:])
			next = start + size
		}
		start = next
	}
	return chunks
}

// cutPoint returns the end offset for a chunk starting at start: the last
// whitespace inside the target window, or a rune-aligned hard cut when the
// window holds a single unbroken token.
func cutPoint(text string, start, targetLen int) int {
	limit := start + targetLen
	if limit >= len(text) {
		return len(text)
	}

	// prefer a paragraph or sentence boundary, then any whitespace
	window := text[start:limit]
	for _, sep := range []string{"\n\n", ". ", "\n", " "} {
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + i + len(sep)
		}
	}

	// single long token: allow the tolerance, then hard cut on a rune boundary
	limit = start + targetLen + boundaryTolerance
	if limit >= len(text) {
		return len(text)
	}
	for limit > start+1 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}
