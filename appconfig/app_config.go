package appconfig

import (
	"os"
	"strconv"
)

// AppConfig carries every tunable of the retrieval pipeline. Values come
// from the environment (a .env file is loaded in main) so the same binary
// works locally and in deployment.
type AppConfig struct {
	// Models
	AnthropicModel string // chat model driving the tool loop
	EmbeddingModel string // Jina embedding model for both collections

	// Document processing
	ChunkSize    int // max characters per chunk, context prefix included
	ChunkOverlap int // characters shared between adjacent chunks

	// Retrieval
	MaxResults int // passages returned per search
	MaxHistory int // prior exchanges kept per session

	// Storage
	MongoURI  string
	MongoDB   string
	DocsPath  string // folder ingested at startup; empty skips ingestion
	HTTPPort  string
	GRPCPort  string
	APIKey    string // optional; empty leaves the API open
	JinaKey   string
	Anthropic string // Anthropic API key
}

// Load reads the configuration from the environment, falling back to
// development defaults.
func Load() *AppConfig {
	return &AppConfig{
		AnthropicModel: envOr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", "jina-embeddings-v3"),
		ChunkSize:      envIntOr("CHUNK_SIZE", 800),
		ChunkOverlap:   envIntOr("CHUNK_OVERLAP", 100),
		MaxResults:     envIntOr("MAX_RESULTS", 5),
		MaxHistory:     envIntOr("MAX_HISTORY", 2),
		MongoURI:       envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        envOr("MONGO_DB", "course_chatbot"),
		DocsPath:       os.Getenv("DOCS_PATH"),
		HTTPPort:       envOr("HTTP_PORT", ":8000"),
		GRPCPort:       envOr("GRPC_PORT", ":50051"),
		APIKey:         os.Getenv("API_KEY"),
		JinaKey:        os.Getenv("JINA_API_KEY"),
		Anthropic:      os.Getenv("ANTHROPIC_API_KEY"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
