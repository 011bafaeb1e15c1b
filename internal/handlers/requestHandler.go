package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/skathuria/PlagiarismAPI/internal/adapter"
	"github.com/skathuria/PlagiarismAPI/internal/adapter/utils"
	"github.com/skathuria/PlagiarismAPI/internal/api"
	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

// newJobData is the handler-internal shape of a submission before it becomes
// a queued job
type newJobData struct {
	id             string
	content        string
	traceId        string
	isSourceIngest bool
	documentName   string
	documentPath   string
	sourceURL      string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CheckHandler godoc
// @Summary      Submit a document for a plagiarism check
// @Description  Accepts raw text as JSON or an uploaded file as multipart/form-data, queues an asynchronous check job, and returns a job ID to poll.
// @Tags         Checking
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request  body      api.CheckRequest     false  "Document content to check"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.StatusResponse   "Empty or oversized document"
// @Router       /check [post]
func CheckHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		if strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data") {
			checkUploadedDocument(w, request)
			return
		}

		var requestData api.CheckRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Check handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad Check Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}
		if reason := validateContent(requestData.Content); reason != "" {
			logRH.Warn("Check request rejected: ", "reason:", reason)
			WriteErrorResponse(w, http.StatusBadRequest, "", reason)
			return
		}

		newJob := newJobData{
			id:      utils.GetNewUUID(),
			content: requestData.Content,
			traceId: request.Context().Value(config.TRACE_ID_KEY).(string),
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// checkUploadedDocument queues a check job for a PDF or DOCX upload. The
// pipeline extracts the text, so validation here is only about the file.
func checkUploadedDocument(w http.ResponseWriter, r *http.Request) {
	filename, tempFilePath, ok := saveUploadedFile(w, r)
	if !ok {
		return
	}

	newJob := newJobData{
		id:           utils.GetNewUUID(),
		traceId:      r.Context().Value(config.TRACE_ID_KEY).(string),
		documentName: filename,
		documentPath: tempFilePath,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current pipeline state and coarse progress of a job.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.StatusResponse  "The current status of the job"
// @Failure      404  {object}  api.StatusResponse  "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToStatusResponse(result))
	}
}

// GetResultHandler godoc
// @Summary      Get the finished plagiarism report
// @Description  Returns the full report once the job has completed. A job that is still running answers 409, a failed job answers 422 with its error.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.ResultResponse  "The plagiarism report"
// @Failure      404  {object}  api.StatusResponse  "Job not found"
// @Failure      409  {object}  api.StatusResponse  "Job still in progress"
// @Failure      422  {object}  api.StatusResponse  "Job failed"
// @Router       /result/{id} [get]
func GetResultHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		switch result.State {
		case jobModel.StateCompleted:
			writeJsonResponse(w, http.StatusOK, adapter.ToResultResponse(result))
		case jobModel.StateFailed:
			writeJsonResponse(w, http.StatusUnprocessableEntity, adapter.ToStatusResponse(result))
		default:
			WriteErrorResponse(w, http.StatusConflict, idString, "Job still in progress, poll /status/"+idString)
		}
	}
}

// CancelHandler godoc
// @Summary      Cancel a pending job
// @Description  Requests cooperative cancellation. The currently running stage finishes; the job then fails with kind Cancelled. Terminal jobs cannot be cancelled.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      202  {object}  api.CancelResponse  "Cancellation requested"
// @Failure      409  {object}  api.StatusResponse  "Job unknown or already terminal"
// @Router       /cancel/{id} [post]
func CancelHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		if !CancelJob(idString, r.Context().Value(config.TRACE_ID_KEY).(string)) {
			WriteErrorResponse(w, http.StatusConflict, idString, "Job cannot be cancelled")
			return
		}
		writeJsonResponse(w, http.StatusAccepted, api.CancelResponse{Id: idString, Status: "cancel_requested"})
	}
}

// PostIngestHandler godoc
// @Summary      Ingest a source document into the persistent corpus
// @Description  Receives a file via multipart/form-data or raw text via JSON and queues an ingestion job. Ingested sources are matched against every later check.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        source_url  formData  string  false  "Canonical URL of the source"
// @Param        document    formData  file    false  "The PDF or DOCX file to ingest"
// @Success      202  {object}  api.InitJobResponse  "Accepted"
// @Failure      400  {object}  api.StatusResponse   "Missing content or file too large"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		newJob := newJobData{
			id:             utils.GetNewUUID(),
			traceId:        r.Context().Value(config.TRACE_ID_KEY).(string),
			isSourceIngest: true,
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			filename, tempFilePath, ok := saveUploadedFile(w, r)
			if !ok {
				return
			}
			newJob.documentName = filename
			newJob.documentPath = tempFilePath
			newJob.sourceURL = r.FormValue("source_url")
		} else {
			var requestData api.IngestRequest
			if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Content) == "" {
				WriteErrorResponse(w, http.StatusBadRequest, "", "content is required")
				return
			}
			newJob.content = requestData.Content
			newJob.sourceURL = requestData.SourceURL
		}
		if newJob.sourceURL == "" {
			newJob.sourceURL = "ingested/" + newJob.id
		}

		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}
