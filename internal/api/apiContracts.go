package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type StatusResponse struct {
	Id        string            `json:"job_id" example:"job_cz109"`
	Status    string            `json:"status" example:"MATCHING"`
	Progress  float64           `json:"progress" example:"80"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Kind    string `json:"kind,omitempty" example:"ProviderError"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type SourceMatch struct {
	SourceURL       string  `json:"source_url"`
	TextSnippet     string  `json:"text_snippet"`
	SimilarityScore float32 `json:"similarity_score"`
	Spans           []Span  `json:"spans"`
}

type ResultResponse struct {
	Id                     string        `json:"job_id"`
	Success                bool          `json:"success"`
	PlagiarismPercentage   float64       `json:"plagiarism_percentage"`
	Matches                []SourceMatch `json:"matches"`
	FullTextWithHighlights string        `json:"full_text_with_highlights"`
	Themes                 []string      `json:"themes"`
}

type InitJobResponse struct {
	Id        string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

type CancelResponse struct {
	Id     string `json:"job_id"`
	Status string `json:"status" example:"cancel_requested"`
}

// requests---------------------

type CheckRequest struct {
	Content string `json:"content" validate:"required"`
}

type IngestRequest struct {
	SourceURL string `json:"source_url" validate:"required"`
	Content   string `json:"content,omitempty"`
}
