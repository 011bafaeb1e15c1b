package jobModel

import (
	"context"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

type JobState string
type ErrorKind string
type JobType string

const (
	StateSubmitted  JobState = "SUBMITTED"
	StateExtracting JobState = "EXTRACTING"
	StateEmbedding  JobState = "EMBEDDING"
	StateRetrieving JobState = "RETRIEVING"
	StateMatching   JobState = "MATCHING"
	StateFinalizing JobState = "FINALIZING"
	StateCompleted  JobState = "COMPLETED"
	StateFailed     JobState = "FAILED"

	//raw text is rejected with ErrorInput at submission, before a job
	//exists. File uploads can only surface it later, at extraction
	ErrorInput     ErrorKind = "InputError"
	ErrorProvider  ErrorKind = "ProviderError"
	ErrorRetrieval ErrorKind = "RetrievalError"
	ErrorIndex     ErrorKind = "IndexError"
	ErrorTimeout   ErrorKind = "TimeoutError"
	ErrorCancelled ErrorKind = "Cancelled"

	JobTypeCheck  JobType = "Check"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string     `json:"id"`
	TraceId     string     `json:"trace_id"`
	JobType     JobType    `json:"job_type"`
	State       JobState   `json:"state"`
	Error       JobError   `json:"error,omitempty"`
	CreatedTime time.Time  `json:"created_time"`
	EndTime     time.Time  `json:"end_time,omitempty"`
	Payload     JobPayload `json:"job_payload"`

	//set by the finalizing stage, exactly once
	Finalized bool `json:"finalized"`
	//set on cancel requests, checked between stages
	CancelRequested bool `json:"cancel_requested"`
}

type JobError struct {
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
	Retry   bool      `json:"retry"`
}

type JobPayload struct {
	Document string   `json:"document,omitempty"`
	Themes   []string `json:"themes,omitempty"`

	PlagiarismPercentage float64                  `json:"plagiarism_percentage"`
	SourceMatches        []matchModel.SourceMatch `json:"matches,omitempty"`
	HighlightedText      string                   `json:"full_text_with_highlights,omitempty"`

	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestFilePath string `json:"ingest_file_path,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
}

// Terminal jobs accept no further mutation.
func (j Job) IsTerminal() bool {
	return j.State == StateCompleted || j.State == StateFailed
}

// Progress maps the pipeline state to the coarse 0-100 number the status
// endpoint reports.
func (j Job) Progress() float64 {
	switch j.State {
	case StateSubmitted:
		return 0
	case StateExtracting:
		return 10
	case StateEmbedding:
		return 30
	case StateRetrieving:
		return 55
	case StateMatching:
		return 80
	case StateFinalizing:
		return 95
	case StateCompleted, StateFailed:
		return 100
	}
	return 0
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
	RequestCancel(ctx context.Context, jobID string) bool
}
