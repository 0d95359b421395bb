package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Geo      GeoConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" | "redis"
	SessionTTL         time.Duration
	JWTSecret          string
	EventTopic         string
}

type DatabaseConfig struct {
	Connection string // Empty disables the interaction log
}

type GeoConfig struct {
	Mirrors        []string
	RequestTimeout time.Duration
	Radius         int // meters, nearby discovery
	MaxResults     int
	KeywordRadius  int // meters, targeted search
	KeywordLimit   int
	EnrichLimit    int
	CacheTTL       time.Duration
}

type AIConfig struct {
	OllamaBaseURL   string
	OllamaModel     string
	HostedProvider  string // "huggingface" | "gemini" | ""
	HostedModel     string
	HostedBaseURL   string
	HuggingFaceKey  string
	GeminiAPIKey    string
	GeminiModel     string
	ProviderTimeout time.Duration
	EnrichTimeout   time.Duration
	DisableLocalLLM bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", time.Hour),
			JWTSecret:          getEnv("JWT_SECRET", "change-me"),
			EventTopic:         getEnv("EVENT_TOPIC", "LOCATOR_INTERACTIONS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Geo: GeoConfig{
			Mirrors: getEnvAsList("OVERPASS_MIRRORS", []string{
				"https://overpass.nchc.org.tw/api/interpreter",
				"https://overpass.kumi.systems/api/interpreter",
			}),
			RequestTimeout: getEnvAsDuration("OVERPASS_TIMEOUT", 15*time.Second),
			Radius:         getEnvAsInt("SEARCH_RADIUS_M", 1500),
			MaxResults:     getEnvAsInt("SEARCH_MAX_RESULTS", 12),
			KeywordRadius:  getEnvAsInt("KEYWORD_RADIUS_M", 3000),
			KeywordLimit:   getEnvAsInt("KEYWORD_MAX_RESULTS", 20),
			EnrichLimit:    getEnvAsInt("ENRICH_LIMIT", 8),
			CacheTTL:       getEnvAsDuration("DISCOVERY_CACHE_TTL", 5*time.Minute),
		},
		Ai: AIConfig{
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:     getEnv("OLLAMA_MODEL", "qwen2.5:3b"),
			HostedProvider:  getEnv("HOSTED_LLM_PROVIDER", "huggingface"),
			HostedModel:     getEnv("HOSTED_LLM_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
			HostedBaseURL:   getEnv("HOSTED_LLM_BASE_URL", ""),
			HuggingFaceKey:  getEnv("HUGGINGFACE_API_KEY", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			ProviderTimeout: getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
			EnrichTimeout:   getEnvAsDuration("ENRICH_TIMEOUT", 20*time.Second),
			DisableLocalLLM: getEnv("DISABLE_LOCAL_LLM", "false") == "true",
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, keeping order.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
