package worker

import (
	"context"
	"sync/atomic"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	jobmodel "github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()
	logger.Debug("Processing job:", "job Id:", job.Id, "type:", job.JobType)

	// the pipeline persists every state transition itself; the worker only
	// picks the entry point
	if job.JobType == jobmodel.JobTypeIngest {
		job = _pipeline.IngestSource(ctx, job)
	} else {
		job = _pipeline.ProcessCheck(ctx, job)
	}

	logger.Info("Job finished", "job Id:", job.Id, "state:", job.State)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

// tryRetireWorker releases this worker's slot unless that would shrink the
// pool below the configured minimum. The swap keeps two idle workers from
// both claiming the last slot above the floor.
func tryRetireWorker() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			workerWaitGroup.Done()
			logger.Info("Removed worker ", "reason", " Idle worker timeout - Removed worker", "workerCount", currentWorkerCount)
			metrics.DecrementActiveWorkerCount()
			return true
		}
	}
}
