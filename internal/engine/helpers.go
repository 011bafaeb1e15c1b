package engine

import (
	"context"
	"errors"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
	"github.com/skathuria/PlagiarismAPI/internal/similarity/chunker"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

const embedBatchSize = 64

func (s *service) transition(ctx context.Context, job jobModel.Job, state jobModel.JobState, log *logger_i.Logger) jobModel.Job {
	job.State = state
	s.save(ctx, job, log)
	log.Info("Stage started", "state", state)
	return job
}

func (s *service) save(ctx context.Context, job jobModel.Job, log *logger_i.Logger) {
	if s.jobStore == nil {
		return
	}
	if err := s.jobStore.SaveJob(ctx, job); err != nil {
		log.Error("Could not persist job state", "state", job.State, "error", err)
	}
}

// cancelRequested re-reads the stored job so a cancel issued through another
// instance is still seen. Cancellation is cooperative: checked between
// stages, never mid-stage.
func (s *service) cancelRequested(ctx context.Context, job *jobModel.Job) bool {
	if job.CancelRequested {
		return true
	}
	if s.jobStore == nil {
		return false
	}
	stored, ok := s.jobStore.GetJob(ctx, job.Id)
	if ok && stored.CancelRequested {
		job.CancelRequested = true
		return true
	}
	return false
}

func (s *service) jobError(ctx context.Context, job jobModel.Job, kind jobModel.ErrorKind, message string) jobModel.Job {
	job.State = jobModel.StateFailed
	job.EndTime = time.Now()
	job.Error = jobModel.JobError{
		Kind:    kind,
		Message: message,
		Retry:   kind == jobModel.ErrorProvider || kind == jobModel.ErrorTimeout,
	}
	s.save(ctx, job, s.logger)
	return job
}

// embedBatches feeds texts to the provider in bounded batches so one huge
// document cannot blow a single request.
func (s *service) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+embedBatchSize, len(texts))
		batch, err := s.embedder.BatchEmbedding(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(texts) {
		return nil, errors.New("provider returned an incomplete batch")
	}
	return vectors, nil
}

func (s *service) chunkAndEmbed(ctx context.Context, docId, text string, timeout time.Duration) ([]matchModel.Chunk, [][]float32, error) {
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chunks := chunker.Split(docId, text, config.ChunkTargetLength, config.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, nil, errors.New("text produced no chunks")
	}
	if len(chunks) > config.MaxDocumentChunks {
		chunks = chunks[:config.MaxDocumentChunks]
	}

	vectors, err := s.embedBatches(stageCtx, chunkTexts(chunks))
	if err != nil {
		return nil, nil, err
	}
	return chunks, vectors, nil
}

func classifyEmbedError(err error) jobModel.ErrorKind {
	return classifyStageError(err, jobModel.ErrorProvider)
}

// classifyStageError maps context failures to their own kinds so a timeout
// or a caller cancel is never misreported as fallback.
func classifyStageError(err error, fallback jobModel.ErrorKind) jobModel.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return jobModel.ErrorTimeout
	}
	if errors.Is(err, context.Canceled) {
		return jobModel.ErrorCancelled
	}
	return fallback
}
