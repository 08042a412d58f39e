package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	GitHub  GitHubConfig
	Ai      AIConfig
	Cache   CacheConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	EventTopic         string
	RateLimitPerMinute int
}

type StorageConfig struct {
	Driver              string // "memory", "redis", "postgres" or "gcs"
	RedisURL            string
	DatabaseConnection  string
	GCSBucket           string
	GCSCredentialsFile  string
	ProfilesPrefix      string
	KnowledgeBasePrefix string
	ChatSessionsPrefix  string
}

type GitHubConfig struct {
	BaseURL     string
	AccessToken string
	UserAgent   string
}

type AIConfig struct {
	LLMProvider     string // "openai", "azure", "huggingface" or "ollama"
	LLMModel        string // e.g. "gpt-4o-mini", "llama3"
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string
	OllamaBaseURL   string
}

type CacheConfig struct {
	ProfileMaxAgeHours   int
	KnowledgeConcurrency int
	HistoryWindow        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5165"),
			NatsURL:            getEnv("NATS_URL", ""),
			EventTopic:         getEnv("EVENT_TOPIC_NAME", "OPENBOOK_EVENTS"),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
		},
		Storage: StorageConfig{
			Driver:              getEnv("STORAGE_DRIVER", "memory"),
			RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
			DatabaseConnection:  getEnv("DB_CONNECTION_STRING", ""),
			GCSBucket:           getEnv("GCS_BUCKET", ""),
			GCSCredentialsFile:  getEnv("GCS_CREDENTIALS_FILE", ""),
			ProfilesPrefix:      getEnv("STORAGE_PROFILES_PREFIX", "github-profiles"),
			KnowledgeBasePrefix: getEnv("STORAGE_KNOWLEDGE_BASES_PREFIX", "knowledge-bases"),
			ChatSessionsPrefix:  getEnv("STORAGE_CHAT_SESSIONS_PREFIX", "chat-sessions"),
		},
		GitHub: GitHubConfig{
			BaseURL:     getEnv("GITHUB_API_URL", "https://api.github.com"),
			AccessToken: getEnv("GITHUB_TOKEN", ""),
			UserAgent:   getEnv("GITHUB_USER_AGENT", "OpenBook-API"),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
			LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
			AzureDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini"),
			AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Cache: CacheConfig{
			ProfileMaxAgeHours:   getEnvAsInt("PROFILE_MAX_AGE_HOURS", 24),
			KnowledgeConcurrency: getEnvAsInt("KB_MAX_CONCURRENCY", 5),
			HistoryWindow:        getEnvAsInt("CHAT_HISTORY_WINDOW", 5),
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
