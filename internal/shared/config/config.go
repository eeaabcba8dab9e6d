package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// External availability services
	Services ServicesConfig

	// Resilient HTTP client behaviour
	Resilience ResilienceConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL for cached availability snapshots
	SnapshotTTL time.Duration
}

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Brokers            []string
	TicketCreatedTopic string
	RetryMax           int
	Timeout            time.Duration
}

// ServicesConfig holds the base URLs of the external availability services
type ServicesConfig struct {
	EventsBaseURL string
	SeatsBaseURL  string

	// How long a seat reservation placed during issuance is held
	SeatReservationTTL time.Duration
}

// ResilienceConfig holds timeout, retry and circuit-breaker settings for
// calls to the external availability services
type ResilienceConfig struct {
	CallTimeout      time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	FailureThreshold int
	OpenDuration     time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ticketly_db"),
			User:     getEnv("DB_USER", "ticketly_user"),
			Password: getEnv("DB_PASSWORD", "ticketly_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			SnapshotTTL: getDurationEnv("REDIS_SNAPSHOT_TTL", 30*time.Second),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Brokers:            getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			TicketCreatedTopic: getEnv("KAFKA_TICKET_CREATED_TOPIC", "ticket-created"),
			RetryMax:           getIntEnv("KAFKA_RETRY_MAX", 3),
			Timeout:            getDurationEnv("KAFKA_TIMEOUT", 10*time.Second),
		},

		// External availability services
		Services: ServicesConfig{
			EventsBaseURL:      getEnv("EVENTS_SERVICE_URL", "http://localhost:8081"),
			SeatsBaseURL:       getEnv("SEATS_SERVICE_URL", "http://localhost:8082"),
			SeatReservationTTL: getDurationEnv("SEAT_RESERVATION_TTL", 10*time.Minute),
		},

		// Resilient HTTP client behaviour
		Resilience: ResilienceConfig{
			CallTimeout:      getDurationEnv("HTTP_CALL_TIMEOUT", 2*time.Second),
			MaxRetries:       getIntEnv("HTTP_MAX_RETRIES", 2),
			RetryBackoff:     getDurationEnv("HTTP_RETRY_BACKOFF", 100*time.Millisecond),
			FailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
			OpenDuration:     getDurationEnv("BREAKER_OPEN_DURATION", 30*time.Second),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// GetAPIBasePath returns the base path for API routes
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}

// IsDevelopment returns true when running in gin debug mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated environment variable with a fallback value
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
