package vectorindex

import "github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"

// Flat is the exact index: brute-force inner product over every stored
// vector. Preferred while the candidate set stays small.
type Flat struct {
	dimension int
	entries   []matchModel.IndexEntry
}

func NewFlat() *Flat { return &Flat{} }

func (f *Flat) Insert(entries []matchModel.IndexEntry) error {
	for _, e := range entries {
		if f.dimension == 0 {
			f.dimension = len(e.Vector)
		}
		if len(e.Vector) != f.dimension {
			return ErrDimensionMismatch
		}
		if !normalize(e.Vector) {
			return ErrZeroVector
		}
		f.entries = append(f.entries, e)
	}
	return nil
}

func (f *Flat) Query(vector []float32, k int) ([]Hit, error) {
	if len(f.entries) == 0 {
		return nil, nil
	}
	if len(vector) != f.dimension {
		return nil, ErrDimensionMismatch
	}
	query := make([]float32, len(vector))
	copy(query, vector)
	if !normalize(query) {
		return nil, ErrZeroVector
	}

	hits := make([]Hit, 0, len(f.entries))
	for _, e := range f.entries {
		hits = append(hits, Hit{Entry: e, Score: dot(query, e.Vector)})
	}
	return topK(hits, k), nil
}

func (f *Flat) Size() int { return len(f.entries) }
