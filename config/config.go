package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HttpPort     string
	AllowOrigins string

	// LLM
	LLMProvider  string // "groq" or "gemini"
	LLMModel     string
	GroqAPIKey   string
	GroqBaseURL  string
	GeminiAPIKey string

	// agent
	MaxIterations int
	QueryTimeout  time.Duration
	ExecTimeout   time.Duration

	// dataset
	DatasetPath string

	// answer cache
	CacheTTL      time.Duration
	RedisURL      string
	RedisPassword string

	// Postgres (optional chat history)
	Host     string
	User     string
	Password string
	DBName   string
	Port     string

	// S3/MinIO (optional chart archive)
	BucketEndpoint  string
	BucketAccessID  string
	BucketAccessKey string
	BucketName      string
	BucketRegion    string
	UseSSL          bool   // MinIO: false, S3: true
	StorageType     string // "minio" or "s3", empty disables the archive
}

func LoadConfig() *Config {
	return &Config{
		HttpPort:        getEnv("PORT", "8000"),
		AllowOrigins:    getEnv("ALLOWORIGINS", "*"),
		LLMProvider:     getEnv("LLM_PROVIDER", "groq"),
		LLMModel:        getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		MaxIterations:   getEnvInt("AGENT_MAX_ITERATIONS", 15),
		QueryTimeout:    getEnvDuration("AGENT_QUERY_TIMEOUT", 2*time.Minute),
		ExecTimeout:     getEnvDuration("AGENT_EXEC_TIMEOUT", 30*time.Second),
		DatasetPath:     getEnv("DATASET_PATH", "data/titanic.csv"),
		CacheTTL:        getEnvDuration("ANSWER_CACHE_TTL", 2*time.Hour),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		Host:            os.Getenv("PG_HOST"),
		User:            os.Getenv("PG_USER"),
		Password:        os.Getenv("PG_PASSWORD"),
		DBName:          os.Getenv("PG_DB"),
		Port:            os.Getenv("PG_PORT"),
		BucketEndpoint:  os.Getenv("BUCKET_ENDPOINT"),
		BucketAccessID:  os.Getenv("BUCKET_ACCESS_ID"),
		BucketAccessKey: os.Getenv("BUCKET_ACCESS_KEY"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		BucketRegion:    os.Getenv("BUCKET_REGION"),
		UseSSL:          os.Getenv("BUCKET_USE_SSL") == "true",
		StorageType:     os.Getenv("STORAGE_TYPE"),
	}
}

// Validate checks the one credential the service cannot run without.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY not set! Get a free key at https://console.groq.com/keys and add it to your .env file")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q (want groq or gemini)", c.LLMProvider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
