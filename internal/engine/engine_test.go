package engine_test

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/engine"
	"github.com/skathuria/PlagiarismAPI/internal/retriever/webclient"
)

// fakeEmbedder produces deterministic bag-of-words vectors so identical text
// always embeds to the identical vector. failAtText, when set, fails the
// batch containing the nth text seen across all calls.
type fakeEmbedder struct {
	mu         sync.Mutex
	seen       int
	failAtText int
}

func (f *fakeEmbedder) Dimension() int { return 8 }

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, text := range texts {
		f.seen++
		if f.failAtText > 0 && f.seen >= f.failAtText {
			return nil, errors.New("provider unavailable")
		}
		out[i] = wordVector(text)
	}
	return out, nil
}

func wordVector(text string) []float32 {
	v := make([]float32, 8)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%8]++
	}
	nonZero := false
	for _, x := range v {
		if x != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		v[0] = 1
	}
	return v
}

type fakeWeb struct {
	hits  []webclient.SearchHit
	pages map[string]string
}

func (f *fakeWeb) Search(ctx context.Context, term string) ([]webclient.SearchHit, error) {
	return f.hits, nil
}

func (f *fakeWeb) Fetch(ctx context.Context, pageURL string) (string, error) {
	text, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("not found")
	}
	return text, nil
}

// fakeJobStore records every persisted state so tests can assert the
// transition sequence.
type fakeJobStore struct {
	mu     sync.Mutex
	jobs   map[string]jobModel.Job
	states []jobModel.JobState
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]jobModel.Job)}
}

func (f *fakeJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.Id] = job
	f.states = append(f.states, job.State)
	return nil
}

func (f *fakeJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobId]
	return job, ok
}

func (f *fakeJobStore) DeleteJob(ctx context.Context, jobID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, jobID)
}

func (f *fakeJobStore) RequestCancel(ctx context.Context, jobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok || job.IsTerminal() {
		return false
	}
	job.CancelRequested = true
	f.jobs[jobID] = job
	return true
}

func checkJob(id, content string) jobModel.Job {
	return jobModel.Job{
		Id:      id,
		TraceId: "trace-" + id,
		JobType: jobModel.JobTypeCheck,
		State:   jobModel.StateSubmitted,
		Payload: jobModel.JobPayload{Document: content},
	}
}

func TestProcessCheck_MatchAgainstIdenticalSource(t *testing.T) {
	doc := "The cat sat on the mat and watched the rain fall outside."
	web := &fakeWeb{
		hits:  []webclient.SearchHit{{URL: "https://source.example/cats"}},
		pages: map[string]string{"https://source.example/cats": doc},
	}
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, web, nil, store)

	job := svc.ProcessCheck(context.Background(), checkJob("job-1", doc))

	if job.State != jobModel.StateCompleted {
		t.Fatalf("job state %s, error %+v", job.State, job.Error)
	}
	if job.Payload.PlagiarismPercentage != 100 {
		t.Errorf("identical document scored %f%%, want 100", job.Payload.PlagiarismPercentage)
	}
	if len(job.Payload.SourceMatches) != 1 {
		t.Fatalf("expected 1 source match, got %d", len(job.Payload.SourceMatches))
	}
	if job.Payload.SourceMatches[0].SourceURL != "https://source.example/cats" {
		t.Errorf("wrong source: %s", job.Payload.SourceMatches[0].SourceURL)
	}
	if !strings.Contains(job.Payload.HighlightedText, "<span class='highlight'>") {
		t.Error("matched document carries no highlight markers")
	}
	if len(job.Payload.Themes) == 0 {
		t.Error("themes missing from completed job")
	}
}

func TestProcessCheck_StateSequence(t *testing.T) {
	doc := "A wholly unremarkable sentence about gardening in the late autumn months."
	web := &fakeWeb{}
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, web, nil, store)

	svc.ProcessCheck(context.Background(), checkJob("job-2", doc))

	want := []jobModel.JobState{
		jobModel.StateExtracting,
		jobModel.StateEmbedding,
		jobModel.StateRetrieving,
		jobModel.StateMatching,
		jobModel.StateFinalizing,
		jobModel.StateCompleted,
	}
	if len(store.states) != len(want) {
		t.Fatalf("saved states %v, want %v", store.states, want)
	}
	for i, st := range want {
		if store.states[i] != st {
			t.Errorf("state %d is %s, want %s", i, store.states[i], st)
		}
	}
}

func TestProcessCheck_ZeroCandidatesCompletesClean(t *testing.T) {
	doc := "Original thoughts on the migratory patterns of fictional birds."
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, &fakeWeb{}, nil, store)

	job := svc.ProcessCheck(context.Background(), checkJob("job-3", doc))

	if job.State != jobModel.StateCompleted {
		t.Fatalf("job state %s, want COMPLETED", job.State)
	}
	if job.Payload.PlagiarismPercentage != 0 {
		t.Errorf("clean document scored %f%%", job.Payload.PlagiarismPercentage)
	}
	if len(job.Payload.SourceMatches) != 0 {
		t.Errorf("clean document has %d matches", len(job.Payload.SourceMatches))
	}
	if job.Payload.HighlightedText != doc {
		t.Error("clean document text was altered")
	}
}

func TestProcessCheck_ProviderFailureMidDocument(t *testing.T) {
	// enough text for several chunks; the provider dies on the third one
	doc := strings.Repeat("Each of these sentences pads the document towards multiple chunks of content. ", 30)
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{failAtText: 3}, &fakeWeb{}, nil, store)

	job := svc.ProcessCheck(context.Background(), checkJob("job-4", doc))

	if job.State != jobModel.StateFailed {
		t.Fatalf("job state %s, want FAILED", job.State)
	}
	if job.Error.Kind != jobModel.ErrorProvider {
		t.Errorf("error kind %s, want %s", job.Error.Kind, jobModel.ErrorProvider)
	}
	if !job.Error.Retry {
		t.Error("provider failures should be marked retryable")
	}
	if job.Payload.PlagiarismPercentage != 0 || len(job.Payload.SourceMatches) != 0 {
		t.Error("failed job must not carry a partial result")
	}
}

// jobDurationCount reads the sample count the job duration histogram holds
// for one status label.
func jobDurationCount(t *testing.T, status string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "plagiarism_job_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "status" && label.GetValue() == status {
					return m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}

func TestProcessCheck_FailureRecordedUnderFailedStatus(t *testing.T) {
	before := jobDurationCount(t, string(jobModel.StateFailed))

	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{failAtText: 1}, &fakeWeb{}, nil, store)
	job := svc.ProcessCheck(context.Background(), checkJob("job-metrics", "A document the provider refuses to embed at all."))

	if job.State != jobModel.StateFailed {
		t.Fatalf("job state %s, want FAILED", job.State)
	}
	after := jobDurationCount(t, string(jobModel.StateFailed))
	if after != before+1 {
		t.Errorf("FAILED duration samples went %d -> %d, want one new observation", before, after)
	}
}

func TestProcessCheck_EmptyDocumentFails(t *testing.T) {
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, &fakeWeb{}, nil, store)

	job := svc.ProcessCheck(context.Background(), checkJob("job-5", "   "))

	if job.State != jobModel.StateFailed {
		t.Fatalf("job state %s, want FAILED", job.State)
	}
	if job.Error.Kind != jobModel.ErrorInput {
		t.Errorf("error kind %s, want %s", job.Error.Kind, jobModel.ErrorInput)
	}
}

func TestProcessCheck_CancelBeforeStart(t *testing.T) {
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, &fakeWeb{}, nil, store)

	job := checkJob("job-6", "Some perfectly fine content for a check job.")
	job.CancelRequested = true

	job = svc.ProcessCheck(context.Background(), job)

	if job.State != jobModel.StateFailed {
		t.Fatalf("job state %s, want FAILED", job.State)
	}
	if job.Error.Kind != jobModel.ErrorCancelled {
		t.Errorf("error kind %s, want %s", job.Error.Kind, jobModel.ErrorCancelled)
	}
}

func TestProcessCheck_CancelViaStoreMidPipeline(t *testing.T) {
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, &fakeWeb{}, nil, store)

	// the cancel flag lands in the store before the pipeline starts, the way
	// a concurrent cancel request would
	job := checkJob("job-7", "Content that will be cancelled from the outside.")
	flagged := job
	flagged.CancelRequested = true
	if err := store.SaveJob(context.Background(), flagged); err != nil {
		t.Fatal(err)
	}

	job = svc.ProcessCheck(context.Background(), job)
	if job.Error.Kind != jobModel.ErrorCancelled {
		t.Errorf("error kind %s, want %s", job.Error.Kind, jobModel.ErrorCancelled)
	}
}

func TestProcessCheck_FinalizeIsExactlyOnce(t *testing.T) {
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, &fakeWeb{}, nil, store)

	job := checkJob("job-8", "A document whose result was already written once.")
	job.Finalized = true
	job.Payload.PlagiarismPercentage = 42

	job = svc.ProcessCheck(context.Background(), job)

	if job.State != jobModel.StateCompleted {
		t.Fatalf("job state %s, want COMPLETED", job.State)
	}
	if job.Payload.PlagiarismPercentage != 42 {
		t.Errorf("finalized result overwritten: %f", job.Payload.PlagiarismPercentage)
	}
}

func TestProcessCheck_VerbatimContainment(t *testing.T) {
	doc := strings.Repeat("This exact paragraph was lifted word for word from the source page. ", 3)
	source := "Preamble before the copied part. " + doc + " Trailing commentary after it."
	web := &fakeWeb{
		hits:  []webclient.SearchHit{{URL: "https://origin.example/article"}},
		pages: map[string]string{"https://origin.example/article": source},
	}
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, web, nil, store)

	job := svc.ProcessCheck(context.Background(), checkJob("job-9", doc))

	if job.State != jobModel.StateCompleted {
		t.Fatalf("job state %s, error %+v", job.State, job.Error)
	}
	if job.Payload.PlagiarismPercentage != 100 {
		t.Errorf("verbatim copy scored %f%%, want 100", job.Payload.PlagiarismPercentage)
	}
	if len(job.Payload.SourceMatches) != 1 || job.Payload.SourceMatches[0].SimilarityScore != 1.0 {
		t.Errorf("verbatim match malformed: %+v", job.Payload.SourceMatches)
	}
}

func TestIngestSource_RequiresCorpus(t *testing.T) {
	store := newFakeJobStore()
	svc := engine.NewService(&fakeEmbedder{}, &fakeWeb{}, nil, store)

	job := jobModel.Job{
		Id:      "ingest-1",
		JobType: jobModel.JobTypeIngest,
		State:   jobModel.StateSubmitted,
		Payload: jobModel.JobPayload{Document: "source text", SourceURL: "https://a.example"},
	}
	job = svc.IngestSource(context.Background(), job)

	if job.State != jobModel.StateFailed {
		t.Fatalf("job state %s, want FAILED without a corpus", job.State)
	}
}
