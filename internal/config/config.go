package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Search   SearchConfig
	Ai       AIConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool // per-statement SQL logging; keep off outside debugging
}

// SearchConfig carries the tunables of the retrieval pipeline. The rerank
// weights and the trend decay constant are heuristics observed in production
// traffic, not calibrated values; keep them overridable.
type SearchConfig struct {
	DefaultLimit      int
	MaxLimit          int
	Threshold         float64 // interactive search
	AnswerThreshold   float64 // answer generation context
	CacheTTL          time.Duration
	TermOverlapWeight float64
	RecencyWeekBonus  float64
	RecencyMonthBonus float64
	TitleMatchBonus   float64
	TrendDecayLambda  float64
	ConfidenceScale   float64
	HistoryTurns      int
	SuggestionLimit   int
}

type AIConfig struct {
	EmbeddingProvider   string // "openai"
	EmbeddingModel      string // e.g. "text-embedding-3-small"
	EmbeddingDimensions int
	LLMProvider         string // "openai"
	LLMModel            string // e.g. "gpt-4o-mini"
	BaseURL             string // override for OpenAI-compatible gateways
	RequestTimeout      time.Duration
	MaxRetries          int
	BatchSize           int
	BatchDelay          time.Duration
	MaxInputChars       int
	// Published per-1K-token rates, used for daily cost estimation.
	PromptCostPer1K     float64
	CompletionCostPer1K float64
	EmbeddingCostPer1K  float64
}

type APIKeys struct {
	OpenAI          string
	EmbedChunkTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogQueries:      getEnvAsBool("DB_LOG_QUERIES", false),
		},
		Search: SearchConfig{
			DefaultLimit:      getEnvAsInt("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:          getEnvAsInt("SEARCH_MAX_LIMIT", 100),
			Threshold:         getEnvAsFloat("SEARCH_SIMILARITY_THRESHOLD", 0.5),
			AnswerThreshold:   getEnvAsFloat("ANSWER_SIMILARITY_THRESHOLD", 0.7),
			CacheTTL:          getEnvAsDuration("SEARCH_CACHE_TTL", time.Hour),
			TermOverlapWeight: getEnvAsFloat("RERANK_TERM_OVERLAP_WEIGHT", 0.1),
			RecencyWeekBonus:  getEnvAsFloat("RERANK_RECENCY_WEEK_BONUS", 0.05),
			RecencyMonthBonus: getEnvAsFloat("RERANK_RECENCY_MONTH_BONUS", 0.02),
			TitleMatchBonus:   getEnvAsFloat("RERANK_TITLE_MATCH_BONUS", 0.15),
			TrendDecayLambda:  getEnvAsFloat("TRENDING_DECAY_LAMBDA", 0.1),
			ConfidenceScale:   getEnvAsFloat("ANSWER_CONFIDENCE_SCALE", 1.2),
			HistoryTurns:      getEnvAsInt("ANSWER_HISTORY_TURNS", 5),
			SuggestionLimit:   getEnvAsInt("SEARCH_SUGGESTION_LIMIT", 5),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			BaseURL:             getEnv("AI_BASE_URL", ""),
			RequestTimeout:      getEnvAsDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
			MaxRetries:          getEnvAsInt("AI_MAX_RETRIES", 3),
			BatchSize:           getEnvAsInt("EMBEDDING_BATCH_SIZE", 100),
			BatchDelay:          getEnvAsDuration("EMBEDDING_BATCH_DELAY", 200*time.Millisecond),
			MaxInputChars:       getEnvAsInt("EMBEDDING_MAX_INPUT_CHARS", 32000),
			PromptCostPer1K:     getEnvAsFloat("LLM_PROMPT_COST_PER_1K", 0.00015),
			CompletionCostPer1K: getEnvAsFloat("LLM_COMPLETION_COST_PER_1K", 0.0006),
			EmbeddingCostPer1K:  getEnvAsFloat("EMBEDDING_COST_PER_1K", 0.00002),
		},
		Keys: APIKeys{
			OpenAI:          getEnv("OPENAI_API_KEY", ""),
			EmbedChunkTopic: getEnv("EMBED_CHUNK_TOPIC_NAME", "EMBED_DOCUMENT_CHUNKS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
