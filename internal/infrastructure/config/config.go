package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Service configuration constants
const (
	ServiceName    = "geekgalaxy-pos"
	ServiceVersion = "1.0.0"
)

// OpenTelemetry configuration constants
const (
	TracesPath    = "/otlp/v1/traces"
	ExportTimeout = 30 * time.Second
	MaxQueueSize  = 2048
)

// Kafka configuration constants
const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaBatchSize    = 100
)

const idempotencyPendingMargin = 10 * time.Second

const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

// Config holds environment-specific configuration.
type Config struct {
	Port     int
	AppEnv   string
	LogLevel string

	StoreDriver string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DynamoDBEndpoint   string
	ProductsTable      string
	SalesTable         string
	ClientsTable       string

	DatabaseURL string
	BoltPath    string

	RedisURL       string
	IdempotencyTTL time.Duration

	KafkaBroker     string
	KafkaSalesTopic string

	MercadoPagoAccessToken string
	PaymentGatewayMock     bool

	OtelEndpoint   string
	OtelAuthHeader string

	TxTimeout     time.Duration
	NotifyTimeout time.Duration
	TxMaxAttempts int
}

// Load reads configuration from environment variables, applying defaults, and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:                 getenvDefault("APP_ENV", "production"),
		LogLevel:               getenvDefault("LOG_LEVEL", "info"),
		StoreDriver:            strings.ToLower(getenvDefault("STORE_DRIVER", StoreDynamoDB)),
		AWSRegion:              getenvDefault("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:         getenvDefault("AWS_ACCESS_KEY_ID", "local"),
		AWSSecretAccessKey:     getenvDefault("AWS_SECRET_ACCESS_KEY", "local"),
		DynamoDBEndpoint:       os.Getenv("DYNAMODB_ENDPOINT"),
		ProductsTable:          getenvDefault("PRODUCTS_TABLE", "products"),
		SalesTable:             getenvDefault("SALES_TABLE", "sales"),
		ClientsTable:           getenvDefault("CLIENTS_TABLE", "clients"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		BoltPath:               getenvDefault("BOLT_PATH", "pos.db"),
		RedisURL:               os.Getenv("REDIS_URL"),
		KafkaBroker:            os.Getenv("KAFKA_BROKER"),
		KafkaSalesTopic:        getenvDefault("KAFKA_SALES_TOPIC", "SaleCancelled"),
		MercadoPagoAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		PaymentGatewayMock:     isTruthy(os.Getenv("PAYMENT_GATEWAY_MOCK")) || isTruthy(os.Getenv("MERCADOPAGO_MOCK")),
		OtelEndpoint:           os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader:         os.Getenv("OTEL_AUTH_HEADER"),
	}

	var err error
	if cfg.Port, err = getenvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.TxMaxAttempts, err = getenvInt("TX_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.TxTimeout, err = getenvDuration("TX_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = getenvDuration("NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = getenvDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDynamoDB, StoreBolt:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1")
	}
	if c.TxTimeout <= 0 || c.NotifyTimeout <= 0 {
		return fmt.Errorf("TX_TIMEOUT and NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

// IdempotencyPendingTTL bounds how long a claimed Idempotency-Key stays "pending". A create
// never outlives TX_TIMEOUT, so a key left behind by a crashed request frees up shortly after.
func (c *Config) IdempotencyPendingTTL() time.Duration {
	return c.TxTimeout + idempotencyPendingMargin
}

func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
