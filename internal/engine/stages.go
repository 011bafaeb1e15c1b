package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
	"github.com/skathuria/PlagiarismAPI/internal/extract"
	"github.com/skathuria/PlagiarismAPI/internal/metrics"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/aggregate"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/chunker"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/matcher"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/themes"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/vectorindex"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

func (s *service) executeExtractStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, run *checkRun) (jobModel.ErrorKind, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_extraction", time.Since(start)) }()

	if job.Payload.IngestFilePath != "" {
		text, err := s.extractFile(job.Payload.IngestFilePath)
		if err != nil {
			return jobModel.ErrorInput, err
		}
		run.doc = text
	} else {
		run.doc = job.Payload.Document
	}

	if strings.TrimSpace(run.doc) == "" {
		return jobModel.ErrorInput, errors.New("document is empty after extraction")
	}

	// downstream consumers read the document from the payload, not the file
	job.Payload.Document = run.doc
	log.Info("Document ready", "bytes", len(run.doc))
	return "", nil
}

func (s *service) executeEmbedStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, run *checkRun) (jobModel.ErrorKind, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_embedding", time.Since(start)) }()

	stageCtx, cancel := context.WithTimeout(ctx, config.EmbeddingStageTimeout)
	defer cancel()

	chunks := chunker.Split(job.Id, run.doc, config.ChunkTargetLength, config.ChunkOverlap)
	if len(chunks) == 0 {
		return jobModel.ErrorInput, errors.New("document produced no chunks")
	}
	if len(chunks) > config.MaxDocumentChunks {
		log.Warn("Document truncated to chunk cap", "chunks", len(chunks), "cap", config.MaxDocumentChunks)
		chunks = chunks[:config.MaxDocumentChunks]
	}

	vectors, err := s.embedBatches(stageCtx, chunkTexts(chunks))
	if err != nil {
		return classifyEmbedError(err), err
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	run.chunks = chunks
	log.Info("Document embedded", "chunks", len(chunks))
	return "", nil
}

func (s *service) executeRetrieveStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, run *checkRun) (jobModel.ErrorKind, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("candidate_retrieval", time.Since(start)) }()

	stageCtx, cancel := context.WithTimeout(ctx, config.RetrievalStageTimeout)
	defer cancel()

	job.Payload.Themes = themes.Extract(run.doc, config.MaxThemes)
	terms := themes.SearchPhrases(run.doc, config.MaxSearchTerms)
	if len(terms) == 0 {
		terms = job.Payload.Themes
	}

	run.sources = s.retriever.Retrieve(stageCtx, terms)
	if len(run.sources) == 0 {
		// legitimate outcome: nothing on the web resembles this document
		log.Info("No candidate sources retrieved")
		return "", nil
	}

	if record, ok := detectVerbatim(run.doc, run.sources); ok {
		log.Info("Verbatim copy detected, skipping vector matching", "source", record.Entry.SourceURL)
		run.verbatim = true
		run.records = []matchModel.MatchRecord{record}
		return "", nil
	}

	entries, err := s.embedCandidates(stageCtx, run.sources)
	if err != nil {
		return classifyEmbedError(err), err
	}

	index, err := vectorindex.Build(entries)
	if err != nil {
		return jobModel.ErrorIndex, err
	}
	run.index = index
	log.Info("Candidate index built", "sources", len(run.sources), "entries", len(entries))
	return "", nil
}

func (s *service) executeMatchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, run *checkRun) (jobModel.ErrorKind, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("similarity_matching", time.Since(start)) }()

	if run.verbatim {
		return "", nil
	}

	stageCtx, cancel := context.WithTimeout(ctx, config.MatchingStageTimeout)
	defer cancel()

	records, err := matcher.Match(stageCtx, run.chunks, run.index, config.SimilarityThreshold, config.MatchTopK)
	if err != nil {
		return classifyStageError(err, jobModel.ErrorIndex), err
	}
	run.records = records

	// the persistent corpus contributes matches next to the per-job index;
	// an unreachable corpus degrades the result, it never fails the job
	if s.corpusStore != nil {
		run.records = append(run.records, s.corpusMatches(stageCtx, log, run.chunks)...)
	}

	log.Info("Matching done", "records", len(run.records))
	return "", nil
}

func (s *service) executeFinalizeStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, run *checkRun) (jobModel.ErrorKind, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("result_finalization", time.Since(start)) }()

	if job.Finalized {
		return "", nil
	}

	report := aggregate.Aggregate(run.doc, run.records, config.SpanMergeGapTolerance)
	job.Payload.PlagiarismPercentage = report.PlagiarismPercentage
	job.Payload.SourceMatches = report.Matches
	job.Payload.HighlightedText = report.HighlightedText
	job.Finalized = true
	return "", nil
}

// embedCandidates chunks and embeds every fetched source and returns the
// entries the per-job index is built from.
func (s *service) embedCandidates(ctx context.Context, sources []matchModel.CandidateSource) ([]matchModel.IndexEntry, error) {
	var entries []matchModel.IndexEntry
	for _, src := range sources {
		chunks := chunker.Split(src.URL, src.Text, config.ChunkTargetLength, config.ChunkOverlap)
		if len(chunks) > config.MaxDocumentChunks {
			chunks = chunks[:config.MaxDocumentChunks]
		}
		if len(chunks) == 0 {
			continue
		}

		vectors, err := s.embedBatches(ctx, chunkTexts(chunks))
		if err != nil {
			return nil, err
		}
		for i, chunk := range chunks {
			entries = append(entries, matchModel.IndexEntry{
				Vector:    vectors[i],
				SourceURL: src.URL,
				Chunk:     chunk,
			})
		}
	}
	return entries, nil
}

// corpusMatches queries the persistent source corpus for each document chunk.
// Failures are logged and absorbed.
func (s *service) corpusMatches(ctx context.Context, log *logger_i.Logger, chunks []matchModel.Chunk) []matchModel.MatchRecord {
	var records []matchModel.MatchRecord
	for _, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}
		hits, err := s.corpusStore.Search(ctx, chunk.Vector, config.MatchTopK)
		if err != nil {
			log.Warn("Corpus search failed, continuing without it", "error", err)
			break
		}
		for _, hit := range hits {
			if hit.Score < config.SimilarityThreshold {
				continue
			}
			records = append(records, matchModel.MatchRecord{
				QueryChunk: chunk,
				Entry:      hit.Entry,
				Score:      hit.Score,
			})
		}
	}
	return records
}

func (s *service) extractFile(path string) (string, error) {
	if path == "" {
		return "", errors.New("no uploaded file to extract")
	}
	if extract.GetDocType(path) == extract.ERR {
		return "", errors.New("unsupported document format")
	}
	return extract.ExtractText(path)
}

func chunkTexts(chunks []matchModel.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
