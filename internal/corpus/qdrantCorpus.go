package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/vectorindex"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

// Store is the persistent side of matching: sources ingested in earlier
// jobs, queryable next to the per-job index. Nil-able - a deployment without
// Qdrant just matches against freshly retrieved candidates.
type Store interface {
	UpsertChunks(ctx context.Context, sourceURL string, chunks []matchModel.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]vectorindex.Hit, error)
}

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)
var collectionName = config.CorpusCollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantCorpus(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant Corpus")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(context.Background(), client, collectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func (db *ClientHolder) UpsertChunks(ctx context.Context, sourceURL string, chunks []matchModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Text,
				"source_url":    sourceURL,
				"source_doc_id": chunk.SourceDocId,
				"start_offset":  chunk.StartOffset,
				"end_offset":    chunk.EndOffset,
				"ingested_at":   time.Now().Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, k int) ([]vectorindex.Hit, error) {
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := make([]vectorindex.Hit, 0, len(result))
	for _, hit := range result {
		entry := matchModel.IndexEntry{
			SourceURL: hit.Payload["source_url"].GetStringValue(),
			Chunk: matchModel.Chunk{
				SourceDocId: hit.Payload["source_doc_id"].GetStringValue(),
				Text:        hit.Payload["content"].GetStringValue(),
				StartOffset: int(hit.Payload["start_offset"].GetIntegerValue()),
				EndOffset:   int(hit.Payload["end_offset"].GetIntegerValue()),
			},
		}
		hits = append(hits, vectorindex.Hit{Entry: entry, Score: hit.Score})
	}
	return hits, nil
}

func createCollection(ctx context.Context, client *qdrant.Client, name string) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
