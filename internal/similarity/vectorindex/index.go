package vectorindex

import (
	"errors"
	"math"
	"sort"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

var (
	ErrZeroVector        = errors.New("zero vector: similarity undefined")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Hit is one nearest-neighbor result, score is cosine similarity since all
// stored and query vectors are L2-normalized.
type Hit struct {
	Entry matchModel.IndexEntry
	Score float32
}

// Index holds the candidate vectors for a single job. Entries are inserted
// once during index construction and only queried afterwards; queries are
// safe to run concurrently once insertion is done.
type Index interface {
	Insert(entries []matchModel.IndexEntry) error
	Query(vector []float32, k int) ([]Hit, error)
	Size() int
}

// Build picks the index strategy from the corpus size: exact flat search for
// small candidate sets, inverted-file clustering above the threshold. An IVF
// whose training set is too thin for its cluster count falls back to flat
// instead of erroring.
func Build(entries []matchModel.IndexEntry) (Index, error) {
	if len(entries) <= config.FlatIndexMaxVectors {
		idx := NewFlat()
		if err := idx.Insert(entries); err != nil {
			return nil, err
		}
		return idx, nil
	}

	idx := NewIVF(clusterCount(len(entries)), config.IVFDefaultNProbe)
	if err := idx.Insert(entries); err != nil {
		if errors.Is(err, errTooFewPerCluster) {
			flat := NewFlat()
			if ferr := flat.Insert(entries); ferr != nil {
				return nil, ferr
			}
			return flat, nil
		}
		return nil, err
	}
	return idx, nil
}

// clusterCount scales with sqrt(n), clamped to a sane range.
func clusterCount(n int) int {
	c := int(math.Sqrt(float64(n)))
	if c < config.IVFMinClusters {
		c = config.IVFMinClusters
	}
	if c > config.IVFMaxClusters {
		c = config.IVFMaxClusters
	}
	return c
}

// normalize L2-normalizes v in place and reports whether it had a usable
// norm. Vectors that already carry unit norm are left untouched.
func normalize(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return false
	}
	norm := float32(math.Sqrt(sum))
	if math.Abs(float64(norm)-1) < 1e-6 {
		return true
	}
	for i := range v {
		v[i] /= norm
	}
	return true
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func topK(hits []Hit, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
