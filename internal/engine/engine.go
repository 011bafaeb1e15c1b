package engine

import (
	"context"
	"strings"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/corpus"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
	"github.com/skathuria/PlagiarismAPI/internal/embedding"
	"github.com/skathuria/PlagiarismAPI/internal/metrics"
	"github.com/skathuria/PlagiarismAPI/internal/retriever"
	"github.com/skathuria/PlagiarismAPI/internal/retriever/webclient"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/vectorindex"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

// Service is what the worker calls - it never needs to know about the
// embedder, the retriever or the index behind it.
type Service interface {
	ProcessCheck(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestSource(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	embedder    embedding.Embedder
	searcher    webclient.Collaborator
	corpusStore corpus.Store
	jobStore    jobModel.JobStore
	retriever   *retriever.Retriever
	logger      *logger_i.Logger
}

// NewService wires the pipeline. corpusStore may be nil - matching then runs
// against freshly retrieved candidates only.
func NewService(em embedding.Embedder, searcher webclient.Collaborator, corpusStore corpus.Store, jobStore jobModel.JobStore) Service {
	return &service{
		embedder:    em,
		searcher:    searcher,
		corpusStore: corpusStore,
		jobStore:    jobStore,
		retriever:   retriever.NewRetriever(searcher),
		logger:      logger_i.NewLogger("Pipeline"),
	}
}

// checkRun carries the intermediate products of one check job between
// stages. Everything here is job-local - jobs share no mutable state.
type checkRun struct {
	doc      string
	chunks   []matchModel.Chunk
	sources  []matchModel.CandidateSource
	index    vectorindex.Index
	records  []matchModel.MatchRecord
	verbatim bool
}

func (s *service) ProcessCheck(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureJobMetrics(string(job.State), time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, config.JobTimeout)
	defer cancel()

	log := s.logger.With("traceId", job.TraceId, "jobId", job.Id)
	run := &checkRun{}

	type stage struct {
		state jobModel.JobState
		fn    func(context.Context, *logger_i.Logger, *jobModel.Job, *checkRun) (jobModel.ErrorKind, error)
	}
	stages := []stage{
		{jobModel.StateExtracting, s.executeExtractStep},
		{jobModel.StateEmbedding, s.executeEmbedStep},
		{jobModel.StateRetrieving, s.executeRetrieveStep},
		{jobModel.StateMatching, s.executeMatchStep},
		{jobModel.StateFinalizing, s.executeFinalizeStep},
	}

	for _, st := range stages {
		if s.cancelRequested(ctx, &job) {
			job = s.jobError(ctx, job, jobModel.ErrorCancelled, "cancelled by caller")
			return job
		}
		job = s.transition(ctx, job, st.state, log)

		kind, err := st.fn(ctx, log, &job, run)
		if err != nil {
			log.Error("Stage failed", "stage", st.state, "kind", kind, "error", err)
			job = s.jobError(ctx, job, kind, err.Error())
			return job
		}
	}

	job.State = jobModel.StateCompleted
	job.EndTime = time.Now()
	s.save(ctx, job, log)
	log.Info("Check complete", "percentage", job.Payload.PlagiarismPercentage, "sources", len(job.Payload.SourceMatches))
	return job
}

func (s *service) IngestSource(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("source_ingestion", time.Since(start)) }()

	log := s.logger.With("traceId", job.TraceId, "jobId", job.Id)

	if s.corpusStore == nil {
		return s.jobError(ctx, job, jobModel.ErrorRetrieval, "source corpus is not configured")
	}

	job = s.transition(ctx, job, jobModel.StateExtracting, log)
	text, err := s.loadIngestText(&job)
	if err != nil {
		return s.jobError(ctx, job, jobModel.ErrorInput, err.Error())
	}

	job = s.transition(ctx, job, jobModel.StateEmbedding, log)
	chunks, vectors, err := s.chunkAndEmbed(ctx, job.Id, text, config.EmbeddingStageTimeout)
	if err != nil {
		return s.jobError(ctx, job, classifyEmbedError(err), err.Error())
	}

	job = s.transition(ctx, job, jobModel.StateFinalizing, log)
	if err := s.corpusStore.UpsertChunks(ctx, job.Payload.SourceURL, chunks, vectors); err != nil {
		return s.jobError(ctx, job, jobModel.ErrorIndex, err.Error())
	}

	job.State = jobModel.StateCompleted
	job.EndTime = time.Now()
	s.save(ctx, job, log)
	log.Info("Source ingested into corpus", "chunks", len(chunks))
	return job
}

func (s *service) loadIngestText(job *jobModel.Job) (string, error) {
	if job.Payload.Document != "" {
		return job.Payload.Document, nil
	}
	return s.extractFile(job.Payload.IngestFilePath)
}

// detectVerbatim catches the trivial copy case before any vector math: the
// whole document sits inside one source.
func detectVerbatim(doc string, sources []matchModel.CandidateSource) (matchModel.MatchRecord, bool) {
	trimmed := strings.TrimSpace(doc)
	if len(trimmed) < 100 {
		return matchModel.MatchRecord{}, false
	}
	for _, src := range sources {
		if strings.Contains(src.Text, trimmed) {
			return matchModel.MatchRecord{
				QueryChunk: matchModel.Chunk{
					Text:        doc,
					StartOffset: 0,
					EndOffset:   len(doc),
				},
				Entry: matchModel.IndexEntry{SourceURL: src.URL},
				Score: 1.0,
			}, true
		}
	}
	return matchModel.MatchRecord{}, false
}
