package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Pipeline PipelineConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	UploadDir          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	ReviewInbox string
}

type AIConfig struct {
	LLMProvider        string // "ollama" or "openai"
	LLMModel           string // e.g. "llama3", "gpt-4o-mini"
	OllamaBaseURL      string
	OpenAIKey          string
	EmbeddingProvider  string // "ollama" or "openai"
	EmbeddingModel     string
	EmbeddingDimension int
}

type PipelineConfig struct {
	ExtractionStrategy  string // "unified" or "two_pass"
	ChunkTargetTokens   int
	ChunkMaxTokens      int
	ChunkOverlapTokens  int
	ClassifySamplePages int
	EmbedBatchSize      int
	EmbedConcurrency    int
	EmbedMaxRetries     int
}

type ChatConfig struct {
	TopK            int
	SimilarityFloor float64
	MaxTokens       int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "PolicyIntel"),
			ReviewInbox: getEnv("REVIEW_INBOX_EMAIL", ""),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
		},
		Pipeline: PipelineConfig{
			ExtractionStrategy:  getEnv("EXTRACTION_STRATEGY", "unified"),
			ChunkTargetTokens:   getEnvAsInt("CHUNK_TARGET_TOKENS", 500),
			ChunkMaxTokens:      getEnvAsInt("CHUNK_MAX_TOKENS", 1000),
			ChunkOverlapTokens:  getEnvAsInt("CHUNK_OVERLAP_TOKENS", 50),
			ClassifySamplePages: getEnvAsInt("CLASSIFY_SAMPLE_PAGES", 10),
			EmbedBatchSize:      getEnvAsInt("EMBED_BATCH_SIZE", 32),
			EmbedConcurrency:    getEnvAsInt("EMBED_CONCURRENCY", 4),
			EmbedMaxRetries:     getEnvAsInt("EMBED_MAX_RETRIES", 3),
		},
		Chat: ChatConfig{
			TopK:            getEnvAsInt("CHAT_TOP_K", 8),
			SimilarityFloor: getEnvAsFloat("CHAT_SIMILARITY_FLOOR", 0.30),
			MaxTokens:       getEnvAsInt("CHAT_MAX_TOKENS", 1024),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
