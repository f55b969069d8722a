package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	// Database Configuration
	DBDriver   string // sqlite3 or mysql
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// JWT Configuration
	JWTSecret string
	// Kafka Configuration
	KafkaBrokers      []string
	KafkaTopicChanges string
	KafkaClientID     string
	KafkaAcks         string
	KafkaRetries      int
	KafkaGroupID      string
	UseKafka          bool
	MaxRetries        int
	RetryDelayMs      int
	DLQTopic          string
	// Redis Configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int // seconds
	UseCache      bool
	// Notification queue
	NotifyQueueSize int
	NotifyWorkers   int
	// Ledger behaviour
	ReconcileSchedule  string
	CompensateToSource bool
	// Tracing
	OtelEndpoint string
	OtelInsecure bool
	// HTTP
	IdempotencyTTLSeconds int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Parse Kafka brokers (comma-separated)
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9093")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	for i, broker := range kafkaBrokers {
		kafkaBrokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		// Database Configuration
		DBDriver:   getEnv("DB_DRIVER", "sqlite3"),
		SQLitePath: getEnv("SQLITE_PATH", "./ledger.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "ledger"),
		DBPassword: getEnv("DB_PASSWORD", "ledger"),
		DBName:     getEnv("DB_NAME", "ledger"),
		// JWT Configuration
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production-min-32-chars"),
		// Kafka Configuration
		KafkaBrokers:      kafkaBrokers,
		KafkaTopicChanges: getEnv("KAFKA_TOPIC_CHANGES", "ledger.data-changes"),
		KafkaClientID:     getEnv("KAFKA_CLIENT_ID", "ledger-service"),
		KafkaAcks:         getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:      getEnvAsInt("KAFKA_RETRIES", 3),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "ledger-listener"),
		UseKafka:          getEnvAsBool("USE_KAFKA", false),
		MaxRetries:        getEnvAsInt("MAX_RETRIES", 3),
		RetryDelayMs:      getEnvAsInt("RETRY_DELAY_MS", 200),
		DLQTopic:          getEnv("DLQ_TOPIC", "ledger.data-changes.dlq"),
		// Redis Configuration
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsInt("CACHE_TTL", 60),
		UseCache:      getEnvAsBool("USE_CACHE", false),
		// Notification queue
		NotifyQueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 1024),
		NotifyWorkers:   getEnvAsInt("NOTIFY_WORKERS", 2),
		// Ledger behaviour
		ReconcileSchedule:  getEnv("RECONCILE_SCHEDULE", "@every 10m"),
		CompensateToSource: getEnvAsBool("COMPENSATE_TO_SOURCE", false),
		// Tracing
		OtelEndpoint: getEnv("OTEL_ENDPOINT", ""),
		OtelInsecure: getEnvAsBool("OTEL_INSECURE", true),
		// HTTP
		IdempotencyTTLSeconds: getEnvAsInt("IDEMPOTENCY_TTL_SECONDS", 300),
	}
}

// MySQLDSN builds the go-sql-driver DSN from the DB_* settings
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
