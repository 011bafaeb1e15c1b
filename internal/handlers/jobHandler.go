package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/job"
	"github.com/skathuria/PlagiarismAPI/internal/metrics"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// CancelJob flags a pending job for cooperative cancellation. The running
// stage finishes, the next one never starts.
func CancelJob(id string, traceId string) bool {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance == nil {
		return false
	}
	return handlerInstance.service.JobStore.RequestCancel(ctxC, id)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.State = jobModel.StateSubmitted

	if newJob.isSourceIngest {
		_job.JobType = jobModel.JobTypeIngest
		_job.Payload.IngestFileName = newJob.documentName
		_job.Payload.IngestFilePath = newJob.documentPath
		_job.Payload.SourceURL = newJob.sourceURL
		_job.Payload.Document = newJob.content

	} else {
		_job.JobType = jobModel.JobTypeCheck
		_job.Payload.Document = newJob.content
		_job.Payload.IngestFileName = newJob.documentName
		_job.Payload.IngestFilePath = newJob.documentPath
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker every 10 requests, and always for an ingest job since
	//corpus ingestion is batch-heavy. idle workers retire on their own, so
	//the pool shrinks back to one when traffic dies down

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
