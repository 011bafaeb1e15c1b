package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/data/redisStore"
	"github.com/skathuria/PlagiarismAPI/internal/data/store"
	"github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
)

func newTestJobStore(t *testing.T) (*store.RedisJobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestJobStore(redisStore.NewTestStore(client)), mr
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	jobStore, mr := newTestJobStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:    jobID,
		State: jobModel.StateMatching,
		Payload: jobModel.JobPayload{
			Document: "Some document under inspection",
			Themes:   []string{"inspection"},
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.State != testJob.State {
			t.Errorf("State mismatch! Got %s, want %s", retrievedJob.State, testJob.State)
		}
		if retrievedJob.Payload.Document != testJob.Payload.Document {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.Payload.Document, testJob.Payload.Document)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_RequestCancel(t *testing.T) {
	jobStore, _ := newTestJobStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "cancel-trace")

	t.Run("Pending job is flagged", func(t *testing.T) {
		pending := jobModel.Job{Id: "pending-job", State: jobModel.StateEmbedding}
		if err := jobStore.SaveJob(ctx, pending); err != nil {
			t.Fatal(err)
		}

		if !jobStore.RequestCancel(ctx, "pending-job") {
			t.Fatal("cancel of a pending job refused")
		}
		stored, _ := jobStore.GetJob(ctx, "pending-job")
		if !stored.CancelRequested {
			t.Error("cancel flag not persisted")
		}
	})

	t.Run("Terminal job is refused", func(t *testing.T) {
		done := jobModel.Job{Id: "done-job", State: jobModel.StateCompleted}
		if err := jobStore.SaveJob(ctx, done); err != nil {
			t.Fatal(err)
		}

		if jobStore.RequestCancel(ctx, "done-job") {
			t.Error("cancel of a completed job accepted")
		}
	})

	t.Run("Unknown job is refused", func(t *testing.T) {
		if jobStore.RequestCancel(ctx, "nope") {
			t.Error("cancel of an unknown job accepted")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	jobStore, _ := newTestJobStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

func TestInMemoryJobStore_CancelAndLifecycle(t *testing.T) {
	memStore := store.InitInMemoryJobStore()
	ctx := context.Background()

	job := jobModel.Job{Id: "mem-job", State: jobModel.StateRetrieving}
	if err := memStore.SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	if !memStore.RequestCancel(ctx, "mem-job") {
		t.Error("cancel of a pending in-memory job refused")
	}
	stored, found := memStore.GetJob(ctx, "mem-job")
	if !found || !stored.CancelRequested {
		t.Error("cancel flag lost in memory store")
	}

	memStore.DeleteJob(ctx, "mem-job")
	if _, found := memStore.GetJob(ctx, "mem-job"); found {
		t.Error("job survived deletion")
	}
}
