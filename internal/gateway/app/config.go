package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/threeds/pkg/cybersource"
)

type Config struct {
	Credentials   cybersource.Credentials // Optional: incomplete credentials leave checkout disabled
	ChallengeCode string                  // Optional: challenge preference sent with enrollment (default: 04)
	Debug         bool                    // Optional: debug-log every processor request and response (default: false)
	Timeout       time.Duration           // Optional: bound on each processor call (default: 45s)

	PublicURL   string // Optional: externally reachable base URL (default: http://localhost:8080)
	CheckoutURL string // Optional: where failed attempts send the buyer (default: $PUBLIC_URL/checkout)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseDSN    string // Optional: driver DSN (default: file:gateway.db with WAL)

	SessionBackend string // Optional: sql or redis (default: sql)
	RedisAddr      string // Optional: redis address (default: localhost:6379)
	RedisPassword  string // Optional
	RedisDB        int    // Optional (default: 0)

	ChallengeTTL     time.Duration // Optional: lifetime of a pending challenge (default: 30m)
	CardVaultKeyPath string        // Optional: file holding card vault key material
	CardVaultKey     string        // Optional: inline card vault key material (ignored when the path is set)
	WebhookRetention time.Duration // Optional: how long webhook events are kept (default: 720h)

	OTLPEndpoint    string  // Optional: OTLP/gRPC collector for processor spans (default: tracing off)
	OTLPInsecure    bool    // Optional: plaintext connection to the collector (default: false)
	TraceSampleRate float64 // Optional: 0.0 to 1.0 (default: 1.0)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m)
}

func LoadConfig() Config {
	cfg := Config{
		Credentials: cybersource.Credentials{
			MerchantID:  os.Getenv("CS3DS_MERCHANT_ID"),
			KeyID:       os.Getenv("CS3DS_KEY_ID"),
			SecretKey:   os.Getenv("CS3DS_SECRET_KEY"),
			Environment: cybersource.Environment(strings.ToLower(getEnvOrDefault("CS3DS_ENVIRONMENT", "sandbox"))),
		}.Normalize(),
		ChallengeCode: getEnvOrDefault("CS3DS_CHALLENGE_CODE", "04"),
		Debug:         getEnvBoolOrDefault("CS3DS_DEBUG", false),
		Timeout:       getEnvDurationOrDefault("CS3DS_TIMEOUT", 45*time.Second),

		PublicURL:   strings.TrimRight(getEnvOrDefault("PUBLIC_URL", "http://localhost:8080"), "/"),
		CheckoutURL: os.Getenv("CHECKOUT_URL"), // Empty means $PUBLIC_URL/checkout

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),

		SessionBackend: strings.ToLower(getEnvOrDefault("SESSION_BACKEND", "sql")),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvIntOrDefault("REDIS_DB", 0),

		ChallengeTTL:     getEnvDurationOrDefault("CHALLENGE_TTL", 30*time.Minute),
		CardVaultKeyPath: os.Getenv("CARD_VAULT_KEY_PATH"),
		CardVaultKey:     os.Getenv("CARD_VAULT_KEY"),
		WebhookRetention: getEnvDurationOrDefault("WEBHOOK_RETENTION", 30*24*time.Hour),

		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:    getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSampleRate: getEnvFloatOrDefault("OTEL_TRACES_SAMPLE_RATE", 1.0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Minute),
	}

	if cfg.DatabaseDSN == "" && cfg.DatabaseDriver == "sqlite" {
		cfg.DatabaseDSN = "file:gateway.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds (processor timeouts are usually given that way)
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
