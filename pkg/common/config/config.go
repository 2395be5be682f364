package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers    []string
	AuditKafkaTopic string

	// Store API (sheet + folder backends share one OAuth2 client)
	SheetAPIBaseURL    string
	FolderAPIBaseURL   string
	StoreTokenURL      string
	StoreClientID      string
	StoreClientSecret  string
	StoreCallTimeout   time.Duration
	StoreRetryAttempts int
	StoreRetryBackoff  time.Duration

	// Intake and audit sheets
	IntakeSheetID string
	AuditSheetID  string

	// Provisioning
	AccessParentFolderID   string
	AccessTemplateDocID    string
	DeletionParentFolderID string
	DeletionTemplateDocID  string
	ProvisionWorkers       int

	// Config files
	TargetsFile      string
	HeaderLayoutFile string

	// Pipeline
	InvalidRecordPolicy string
	RunLockTTL          time.Duration
	RunLockEnabled      bool
	LedgerEnabled       bool
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "dsarflow"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "dsarflow123"),
		PostgresDB:       getEnv("POSTGRES_DB", "dsarflow"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:    getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		AuditKafkaTopic: getEnv("AUDIT_KAFKA_TOPIC", ""),

		SheetAPIBaseURL:    getEnv("SHEET_API_BASE_URL", "http://localhost:9080"),
		FolderAPIBaseURL:   getEnv("FOLDER_API_BASE_URL", "http://localhost:9081"),
		StoreTokenURL:      getEnv("STORE_TOKEN_URL", ""),
		StoreClientID:      getEnv("STORE_CLIENT_ID", ""),
		StoreClientSecret:  getEnv("STORE_CLIENT_SECRET", ""),
		StoreCallTimeout:   getDuration("STORE_CALL_TIMEOUT", 15*time.Second),
		StoreRetryAttempts: getIntEnv("STORE_RETRY_ATTEMPTS", 3),
		StoreRetryBackoff:  getDuration("STORE_RETRY_BACKOFF", 500*time.Millisecond),

		IntakeSheetID: getEnv("INTAKE_SHEET_ID", ""),
		AuditSheetID:  getEnv("AUDIT_SHEET_ID", ""),

		AccessParentFolderID:   getEnv("ACCESS_PARENT_FOLDER_ID", ""),
		AccessTemplateDocID:    getEnv("ACCESS_TEMPLATE_DOC_ID", ""),
		DeletionParentFolderID: getEnv("DELETION_PARENT_FOLDER_ID", ""),
		DeletionTemplateDocID:  getEnv("DELETION_TEMPLATE_DOC_ID", ""),
		ProvisionWorkers:       getIntEnv("PROVISION_WORKERS", 1),

		TargetsFile:      getEnv("TARGETS_FILE", ""),
		HeaderLayoutFile: getEnv("HEADER_LAYOUT_FILE", ""),

		InvalidRecordPolicy: getEnv("PIPELINE_INVALID_POLICY", "abort"),
		RunLockTTL:          getDuration("RUN_LOCK_TTL", 10*time.Minute),
		RunLockEnabled:      getBoolEnv("RUN_LOCK_ENABLED", true),
		LedgerEnabled:       getBoolEnv("LEDGER_ENABLED", true),
	}
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
