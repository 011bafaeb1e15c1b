package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking
	//the splitter keeps chunks under ChunkTargetLength plus a small tolerance
	//overlap keeps a copied passage that straddles a boundary inside one chunk
	ChunkTargetLength = 400
	ChunkOverlap      = 80
	MaxDocumentChunks = 600

	//matching
	//SimilarityThreshold catches near-verbatim copies. Drop it to
	//ParaphraseThreshold when looser, paraphrase-level matching is wanted.
	SimilarityThreshold   float32 = 0.80
	ParaphraseThreshold   float32 = 0.60
	MatchTopK                     = 3
	SpanMergeGapTolerance         = 24

	//vector index
	FlatIndexMaxVectors = 10000
	IVFMinClusterFill   = 8
	IVFMinClusters      = 4
	IVFMaxClusters      = 256
	IVFDefaultNProbe    = 4
	IVFTrainIterations  = 10

	//candidate retrieval
	MaxSearchTerms      = 5
	MaxThemes           = 3
	MaxCandidateSources = 20
	MaxFetchPerDomain   = 2
	MaxFetchWorkers     = 8
	FetchTimeout        = 20 * time.Second

	//stage deadlines - a blocked external call fails the job, it never hangs it
	EmbeddingStageTimeout = 60 * time.Second
	RetrievalStageTimeout = 90 * time.Second
	MatchingStageTimeout  = 30 * time.Second
	JobTimeout            = 4 * time.Minute

	//TODO:this will differ based on the request and provider
	EmbeddingOutputDimensionality int32 = 1536
	CorpusCollectionName                = "source-corpus"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB holding the persistent source corpus
	QdrantHost             = "localhost"
	QdrantPort             = 6333 //http
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//embeddings
	GoogleEmbeddingModel  = "gemini-embedding-001"
	GoogleEmbeddingAPIKey = ""
	OpenAIEmbeddingModel  = "text-embedding-3-small"

	//search collaborator
	SearchEndpoint   = ""
	SearchMaxResults = 10

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore = 0

	//job retention - results the caller never fetched expire on their own
	RedisJobStoreTTL = 24 * time.Hour
	JobMaxAge        = 24 * time.Hour
)
