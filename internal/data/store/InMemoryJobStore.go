package store

import (
	"context"
	"sync"
	"time"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobModel.Job
}

func InitInMemoryJobStore() *InMemoryJobStore {
	store := &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobModel.Job),
	}
	go store.sweepExpired()
	return store
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStored jobModel.Job) error {

	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[jobToStored.Id] = jobToStored
	inMemLogger.Debug(jobToStored.Id, " : Saved job to store")
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	inMemLogger.Debug(jobId, " : Is job found :", found)
	return result, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}

func (store *InMemoryJobStore) RequestCancel(ctx context.Context, jobID string) bool {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	job, found := store.jobMap[jobID]
	if !found || job.IsTerminal() {
		return false
	}
	job.CancelRequested = true
	store.jobMap[jobID] = job
	return true
}

// sweepExpired mimics the TTL the Redis store gets for free. Results older
// than the retention window disappear.
func (store *InMemoryJobStore) sweepExpired() {
	ticker := time.NewTicker(config.JobMaxAge / 24)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-config.JobMaxAge)
		store.jobMutex.Lock()
		for id, job := range store.jobMap {
			if job.CreatedTime.Before(cutoff) {
				delete(store.jobMap, id)
			}
		}
		store.jobMutex.Unlock()
	}
}
