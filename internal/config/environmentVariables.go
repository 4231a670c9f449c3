package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//chunking
	ChunkMaxChars     = 1200
	ChunkOverlap      = 150
	TinyPageThreshold = 500

	//parsing / OCR
	OCRMinReplacements = 5
	OCRRenderDPI       = 300
	PageExtractTimeout = 10 * time.Second

	//embeddings
	EmbeddingModel                = "text-embedding-3-small"
	EmbeddingOutputDimensionality = 1536
	EmbeddingBatchSize            = 64
	FailedChunkErrorLimit         = 300

	//vector index
	VectorIndexRequestTimeout = 60 * time.Second
	DefaultTopK               = 3
	DefaultDenseWeight        = 0.5
	DefaultSparseWeight       = 0.5

	//llm
	GeminiModelName = "gemini-2.5-flash-lite-preview-09-2025"
	ModelContext    = "You are a precise document assistant. Answer only from the provided context. If the context does not contain the answer, say you don't know."

	//outbound http pooling
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//document store
	MongoConnectTimeout = 3 * time.Second
)

// Settings holds everything that differs between deployments: endpoints,
// credentials and file locations. Tunables stay constants above.
type Settings struct {
	ListenAddr string

	OpenAIAPIKey string
	GeminiAPIKey string

	MilvusURL        string
	MilvusToken      string
	MilvusCollection string

	MongoURI string
	MongoDB  string

	AuthToken    string
	NoAuthBypass bool

	AgentsConfigPath string
}

// Load reads .env when present and then the process environment.
// Missing optional values fall back to local-development defaults.
func Load() Settings {
	//.env is optional, real env vars win either way
	_ = godotenv.Load()

	return Settings{
		ListenAddr:       getEnv("LISTEN_ADDR", ServerListenAddr),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		MilvusURL:        getEnv("MILVUS_URL", "http://127.0.0.1:19530"),
		MilvusToken:      os.Getenv("MILVUS_TOKEN"),
		MilvusCollection: getEnv("MILVUS_COLLECTION", "doc_chunks"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:          getEnv("MONGO_DB", "docrag"),
		AuthToken:        os.Getenv("AUTH_TOKEN"),
		NoAuthBypass:     getBoolEnv("NO_AUTH_BYPASS", true),
		AgentsConfigPath: getEnv("AGENTS_CONFIG_PATH", "resources/agents.yaml"),
	}
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
