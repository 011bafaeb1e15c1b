package matchModel

// Chunk is a bounded span of a document's text, the unit of embedding and
// matching. Offsets are byte positions into the owning document and satisfy
// StartOffset < EndOffset <= len(document); chunks from one document are
// non-decreasing in StartOffset.
type Chunk struct {
	Id          string    `json:"chunk_id"`
	SourceDocId string    `json:"source_doc_id"`
	Text        string    `json:"content"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	Vector      []float32 `json:"-"`
}

// IndexEntry pairs a candidate chunk vector with its provenance. Entries are
// never mutated after insertion.
type IndexEntry struct {
	Vector    []float32
	SourceURL string
	Chunk     Chunk
}

// MatchRecord is one above-threshold nearest-neighbor hit for one document
// chunk. Ephemeral, consumed by the aggregator.
type MatchRecord struct {
	QueryChunk Chunk
	Entry      IndexEntry
	Score      float32
}

// HighlightSpan is a merged byte range over the original document. After
// aggregation spans are non-overlapping and sorted by StartOffset.
type HighlightSpan struct {
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`
}

func (h HighlightSpan) Len() int {
	return h.EndOffset - h.StartOffset
}

// SourceMatch is the final per-source attribution after dedup and span merge.
type SourceMatch struct {
	SourceURL       string          `json:"source_url"`
	TextSnippet     string          `json:"text_snippet"`
	SimilarityScore float32         `json:"similarity_score"`
	Spans           []HighlightSpan `json:"spans"`
}

// CandidateSource is one fetched web source, validated at the boundary
// before anything downstream sees it.
type CandidateSource struct {
	URL  string
	Text string
}
