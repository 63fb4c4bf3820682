package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration, loaded from the environment.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration

	// Payment flow
	PaymentTimeout time.Duration
	PaymentDelay   time.Duration
	ChainRPCURL    string // when set, payments are verified against the chain

	// Insights (OpenAI-compatible chat completions endpoint)
	InsightsBaseURL string
	InsightsAPIKey  string
	InsightsModel   string

	// Trend ingestion cron
	TrendScanEnabled bool

	AllowedOrigin string
}

// LoadConfig reads configuration from a .env file (if present) and the
// environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "healthsync"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenExpiry:      getDuration("TOKEN_EXPIRY", 24*time.Hour),
		PaymentTimeout:   getDuration("PAYMENT_TIMEOUT", 30*time.Second),
		PaymentDelay:     getDuration("PAYMENT_DELAY", 2*time.Second),
		ChainRPCURL:      getEnv("CHAIN_RPC_URL", ""),
		InsightsBaseURL:  getEnv("INSIGHTS_BASE_URL", "https://openrouter.ai/api/v1"),
		InsightsAPIKey:   getEnv("INSIGHTS_API_KEY", ""),
		InsightsModel:    getEnv("INSIGHTS_MODEL", "google/gemini-2.0-flash-001"),
		TrendScanEnabled: getBool("TREND_SCAN_ENABLED", true),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithField(key, value).Warn("Invalid duration, using default")
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logrus.WithField(key, value).Warn("Invalid boolean, using default")
		return fallback
	}
	return b
}
