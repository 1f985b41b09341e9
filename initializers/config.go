package initializers

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/storage"

	"github.com/rs/zerolog/log"
)

// Config is everything the server reads from the environment.
type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string
	LogPretty   bool

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	Kroolo        analyzer.KrooloConfig
	AITimeout     time.Duration

	Storage          storage.Config
	ElasticsearchURL string
	MaxUploadBytes   int64
	CORSOrigins      []string

	RateLimit       int
	StrictRateLimit int
}

// providerCalls is the most sequential AI requests one analysis makes:
// Gemini, then the two Kroolo chat routes.
const providerCalls = 3

// WriteTimeout outlasts an analysis in which every provider call times out.
func (c Config) WriteTimeout() time.Duration {
	return providerCalls*c.AITimeout + 30*time.Second
}

// LogSettings reads LOG_LEVEL and LOG_PRETTY so the logger can be set up
// before LoadConfig warns about invalid values.
func LogSettings() (level string, pretty bool) {
	return envOr("LOG_LEVEL", "info"), envBool("LOG_PRETTY", false)
}

// LoadConfig reads Config from the process environment. Call LoadEnv first
// so values from .env are visible.
func LoadConfig() Config {
	timeout := time.Duration(envInt("AI_TIMEOUT_SECONDS", 120)) * time.Second
	level, pretty := LogSettings()
	return Config{
		DatabaseURL: os.Getenv("DIRECT_URL"),
		Port:        envOr("PORT", "8080"),
		LogLevel:    level,
		LogPretty:   pretty,

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		Kroolo: analyzer.KrooloConfig{
			AIBaseURL:  os.Getenv("NEXT_PUBLIC_REACT_APP_API_URL_KROOLO_AI"),
			APIBaseURL: os.Getenv("NEXT_PUBLIC_REACT_APP_API_URL"),
			Token:      os.Getenv("KROOLO_API_TOKEN"),
			Timeout:    timeout,
		},
		AITimeout: timeout,

		Storage: storage.Config{
			Driver:         os.Getenv("STORAGE_DRIVER"),
			S3Region:       os.Getenv("SUPABASE_REGION"),
			S3Endpoint:     os.Getenv("SUPABASE_S3_ENDPOINT"),
			S3AccessKey:    os.Getenv("SUPABASE_ACCESS_KEY"),
			S3SecretKey:    os.Getenv("SUPABASE_SECRET_KEY"),
			S3Bucket:       os.Getenv("SUPABASE_BUCKET"),
			S3PublicURL:    os.Getenv("SUPABASE_S3_URL"),
			MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
			MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
			MinioBucket:    os.Getenv("MINIO_BUCKET"),
			MinioRegion:    os.Getenv("MINIO_REGION"),
			MinioUseSSL:    envBool("MINIO_USE_SSL", false),
		},
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		MaxUploadBytes:   int64(envInt("MAX_UPLOAD_MB", 25)) << 20,
		CORSOrigins:      envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RateLimit:       envInt("RATE_LIMIT_PER_MINUTE", 100),
		StrictRateLimit: envInt("STRICT_RATE_LIMIT_PER_MINUTE", 10),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msgf("invalid value, using default %d", fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
