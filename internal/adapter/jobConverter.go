package adapter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/api"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/domain/matchModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToStatusResponse(job jobModel.Job) api.StatusResponse {
	return api.StatusResponse{
		Id:        job.Id,
		Status:    string(job.State),
		Progress:  job.Progress(),
		Error:     toOutgoingError(job),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
	}
}

func ToResultResponse(job jobModel.Job) api.ResultResponse {
	return api.ResultResponse{
		Id:                     job.Id,
		Success:                job.State == jobModel.StateCompleted,
		PlagiarismPercentage:   job.Payload.PlagiarismPercentage,
		Matches:                toAPIMatches(job.Payload.SourceMatches),
		FullTextWithHighlights: job.Payload.HighlightedText,
		Themes:                 job.Payload.Themes,
	}
}

func toAPIMatches(matches []matchModel.SourceMatch) []api.SourceMatch {
	out := make([]api.SourceMatch, 0, len(matches))
	for _, m := range matches {
		spans := make([]api.Span, 0, len(m.Spans))
		for _, s := range m.Spans {
			spans = append(spans, api.Span{Start: s.StartOffset, End: s.EndOffset})
		}
		out = append(out, api.SourceMatch{
			SourceURL:       m.SourceURL,
			TextSnippet:     m.TextSnippet,
			SimilarityScore: m.SimilarityScore,
			Spans:           spans,
		})
	}
	return out
}

func toOutgoingError(job jobModel.Job) *api.JobOutgoingError {
	if job.Error.Message == "" && job.Error.Kind == "" {
		return nil
	}
	return &api.JobOutgoingError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    string(job.Error.Kind),
		Message: job.Error.Message,
		Retry:   job.Error.Retry,
	}
}

func BadRequest(id string, error string, code int) api.StatusResponse {
	return api.StatusResponse{
		Id:        id,
		Status:    string(api.JobStatusError),
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
