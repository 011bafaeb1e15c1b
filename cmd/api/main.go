// @title           Plagiarism Detection API
// @version         1.0
// @description     Asynchronous plagiarism checking: submit a document, poll the job, fetch the report.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/skathuria/PlagiarismAPI/internal/config"
	"github.com/skathuria/PlagiarismAPI/internal/corpus"
	"github.com/skathuria/PlagiarismAPI/internal/data/store"
	jobmodel "github.com/skathuria/PlagiarismAPI/internal/domain/jobModel"
	"github.com/skathuria/PlagiarismAPI/internal/embedding"
	"github.com/skathuria/PlagiarismAPI/internal/embedding/googleEmbedding"
	"github.com/skathuria/PlagiarismAPI/internal/embedding/openaiEmbedding"
	"github.com/skathuria/PlagiarismAPI/internal/engine"
	"github.com/skathuria/PlagiarismAPI/internal/handlers"
	"github.com/skathuria/PlagiarismAPI/internal/job"
	"github.com/skathuria/PlagiarismAPI/internal/retriever/webclient"
	"github.com/skathuria/PlagiarismAPI/internal/server"
	"github.com/skathuria/PlagiarismAPI/internal/worker"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStoreOrFallback(serviceContext, logger),
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	embedder := pickEmbedder(serviceContext, logger)
	if embedder == nil {
		logger.Error("No embedding provider available. Shutting down.")
		return
	}

	//the corpus is optional - without Qdrant checks still run against
	//freshly retrieved web candidates
	var corpusStore corpus.Store
	if holder := corpus.GetQdrantCorpus(serviceContext); holder != nil {
		corpusStore = holder
	} else {
		logger.Warn("Qdrant is offline, persistent source corpus disabled")
	}

	pipeline := engine.NewService(embedder, webclient.NewHTTPCollaborator(), corpusStore, serviceConfig.JobStore)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, pipeline)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func jobStoreOrFallback(ctx context.Context, logger *logger_i.Logger) jobmodel.JobStore {
	if redisStore := store.GetRedisJobStore(ctx); redisStore != nil {
		return redisStore
	}
	logger.Error("Redis store is offline, using in-memory job store")
	return store.InitInMemoryJobStore()
}

// pickEmbedder prefers the Google provider and falls back to OpenAI when
// only that key is configured.
func pickEmbedder(ctx context.Context, logger *logger_i.Logger) embedding.Embedder {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = config.GoogleEmbeddingAPIKey
	}
	if apiKey != "" {
		if embedder := googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, apiKey); embedder != nil {
			logger.Info("Using Google embedding provider", "model", config.GoogleEmbeddingModel)
			return embedder
		}
	}

	if embedder := openaiEmbedding.NewOpenAIEmbeddingClient(os.Getenv("OPENAI_API_KEY"), config.OpenAIEmbeddingModel); embedder != nil {
		logger.Info("Using OpenAI embedding provider", "model", config.OpenAIEmbeddingModel)
		return embedder
	}
	return nil
}
