package matcher

import (
	"context"
	"sync"

	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/vectorindex"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

const queryWorkers = 4

// Match queries the job's index with every document chunk and keeps hits at
// or above the similarity threshold. A chunk with no hit above threshold is
// dropped silently - that is evidence of originality, not an error. The
// index is read-only by the time this runs, so the per-chunk queries fan out
// across a few goroutines; results come back in document order.
func Match(ctx context.Context, chunks []matchModel.Chunk, index vectorindex.Index, threshold float32, k int) ([]matchModel.MatchRecord, error) {
	if index == nil || index.Size() == 0 || len(chunks) == 0 {
		return nil, nil
	}
	log := logger_i.NewLogger("Matcher")

	perChunk := make([][]matchModel.MatchRecord, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, queryWorkers)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk matchModel.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()
			perChunk[i], errs[i] = queryOne(chunk, index, threshold, k)
		}(i, chunk)
	}
	wg.Wait()

	var records []matchModel.MatchRecord
	for i := range chunks {
		if errs[i] != nil {
			// dimension mismatch or zero vector - provider contract
			// violation, the whole match run is unusable
			return nil, errs[i]
		}
		records = append(records, perChunk[i]...)
	}

	log.Debug("match pass done", "chunks", len(chunks), "records", len(records))
	return records, nil
}

func queryOne(chunk matchModel.Chunk, index vectorindex.Index, threshold float32, k int) ([]matchModel.MatchRecord, error) {
	hits, err := index.Query(chunk.Vector, k)
	if err != nil {
		return nil, err
	}
	var out []matchModel.MatchRecord
	for _, hit := range hits {
		if hit.Score < threshold {
			continue
		}
		out = append(out, matchModel.MatchRecord{
			QueryChunk: chunk,
			Entry:      hit.Entry,
			Score:      hit.Score,
		})
	}
	return out, nil
}
