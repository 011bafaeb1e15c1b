package vectorindex

import (
	"errors"
	"sort"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

var errTooFewPerCluster = errors.New("too few vectors per cluster to train")

// IVF partitions the vector space into k-means clusters trained on the
// corpus itself and probes only the nProbe nearest clusters at query time.
// Recall is traded for latency; nProbe is the knob.
type IVF struct {
	dimension int
	nClusters int
	nProbe    int
	centroids [][]float32
	lists     [][]matchModel.IndexEntry
}

func NewIVF(nClusters, nProbe int) *IVF {
	if nClusters < 1 {
		nClusters = 1
	}
	if nProbe < 1 {
		nProbe = 1
	}
	if nProbe > nClusters {
		nProbe = nClusters
	}
	return &IVF{nClusters: nClusters, nProbe: nProbe}
}

// Insert trains the cluster centroids on the full entry set and assigns each
// entry to its nearest centroid. The whole candidate set arrives in one call
// during index construction, so training on it is training on the corpus.
func (ivf *IVF) Insert(entries []matchModel.IndexEntry) error {
	if len(entries) < ivf.nClusters*config.IVFMinClusterFill {
		return errTooFewPerCluster
	}
	for _, e := range entries {
		if ivf.dimension == 0 {
			ivf.dimension = len(e.Vector)
		}
		if len(e.Vector) != ivf.dimension {
			return ErrDimensionMismatch
		}
		if !normalize(e.Vector) {
			return ErrZeroVector
		}
	}

	ivf.train(entries)

	ivf.lists = make([][]matchModel.IndexEntry, ivf.nClusters)
	for _, e := range entries {
		c := ivf.nearestCentroid(e.Vector)
		ivf.lists[c] = append(ivf.lists[c], e)
	}
	return nil
}

func (ivf *IVF) Query(vector []float32, k int) ([]Hit, error) {
	if len(vector) != ivf.dimension {
		return nil, ErrDimensionMismatch
	}
	query := make([]float32, len(vector))
	copy(query, vector)
	if !normalize(query) {
		return nil, ErrZeroVector
	}

	probes := ivf.nearestCentroids(query, ivf.nProbe)
	var hits []Hit
	for _, c := range probes {
		for _, e := range ivf.lists[c] {
			hits = append(hits, Hit{Entry: e, Score: dot(query, e.Vector)})
		}
	}
	return topK(hits, k), nil
}

func (ivf *IVF) Size() int {
	n := 0
	for _, l := range ivf.lists {
		n += len(l)
	}
	return n
}

// train runs a few Lloyd iterations, seeding centroids evenly across the
// entry slice. Vectors are normalized, so the mean is re-normalized to keep
// inner product equal to cosine.
func (ivf *IVF) train(entries []matchModel.IndexEntry) {
	ivf.centroids = make([][]float32, ivf.nClusters)
	step := len(entries) / ivf.nClusters
	for i := range ivf.centroids {
		seed := entries[i*step].Vector
		c := make([]float32, ivf.dimension)
		copy(c, seed)
		ivf.centroids[i] = c
	}

	assignment := make([]int, len(entries))
	for iter := 0; iter < config.IVFTrainIterations; iter++ {
		changed := false
		for i, e := range entries {
			c := ivf.nearestCentroid(e.Vector)
			if assignment[i] != c {
				assignment[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, ivf.nClusters)
		counts := make([]int, ivf.nClusters)
		for i := range sums {
			sums[i] = make([]float64, ivf.dimension)
		}
		for i, e := range entries {
			c := assignment[i]
			counts[c]++
			for d, x := range e.Vector {
				sums[c][d] += float64(x)
			}
		}
		for c := range ivf.centroids {
			if counts[c] == 0 {
				continue // empty cluster keeps its old centroid
			}
			for d := range ivf.centroids[c] {
				ivf.centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
			normalize(ivf.centroids[c])
		}
	}
}

func (ivf *IVF) nearestCentroid(v []float32) int {
	best, bestScore := 0, float32(-2)
	for i, c := range ivf.centroids {
		if s := dot(v, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func (ivf *IVF) nearestCentroids(v []float32, n int) []int {
	type scored struct {
		idx   int
		score float32
	}
	all := make([]scored, len(ivf.centroids))
	for i, c := range ivf.centroids {
		all[i] = scored{i, dot(v, c)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })
	if n > len(all) {
		n = len(all)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].idx
	}
	return out
}
