package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported secret store backends
const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Signing   SigningConfig
	OTP       OTPConfig
	Store     StoreConfig
	Database  DatabaseConfig
	DynamoDB  DynamoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Timing    TimingConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// SigningConfig carries raw key material. Keys are validated by signing.NewKeyRing.
type SigningConfig struct {
	PrivateKeyOne string
	PrivateKeyTwo string
}

type OTPConfig struct {
	Period    uint
	Skew      uint
	IssuerOne string
	IssuerTwo string
}

type StoreConfig struct {
	Backend         string
	Timeout         time.Duration
	ConflictRetries uint64
	EncryptionKey   []byte // nil when secrets are stored unsealed
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type DynamoDBConfig struct {
	Table    string
	Region   string
	Endpoint string
}

type RedisConfig struct {
	URL       string
	KeyPrefix string
}

type RateLimitConfig struct {
	RegisterPerMinute int
	SignPerMinute     int
}

type TimingConfig struct {
	BaseDelayMs   int
	RandomDelayMs int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Signing: SigningConfig{
			PrivateKeyOne: os.Getenv("PRIVATE_KEY_ONE"),
			PrivateKeyTwo: os.Getenv("PRIVATE_KEY_TWO"),
		},
		OTP: OTPConfig{
			Period:    uint(getEnvAsInt("OTP_PERIOD", 30)),
			Skew:      uint(getEnvAsInt("OTP_SKEW", 1)),
			IssuerOne: getEnv("OTP_ISSUER_ONE", "Google MFA zkVault"),
			IssuerTwo: getEnv("OTP_ISSUER_TWO", "Microsoft MFA zkVault"),
		},
		Store: StoreConfig{
			Backend:         strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
			Timeout:         getEnvAsDuration("STORE_TIMEOUT", 3*time.Second),
			ConflictRetries: uint64(getEnvAsInt("STORE_CONFLICT_RETRIES", 3)),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "zkvault"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		DynamoDB: DynamoDBConfig{
			Table:    getEnv("DYNAMODB_TABLE", "UsernameSecrets"),
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Endpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "zkvault:credential:"),
		},
		RateLimit: RateLimitConfig{
			RegisterPerMinute: getEnvAsInt("RATE_LIMIT_REGISTER_PER_MINUTE", 10),
			SignPerMinute:     getEnvAsInt("RATE_LIMIT_SIGN_PER_MINUTE", 30),
		},
		Timing: TimingConfig{
			BaseDelayMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 150),
			RandomDelayMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
		},
	}

	if cfg.Signing.PrivateKeyOne == "" || cfg.Signing.PrivateKeyTwo == "" {
		return nil, fmt.Errorf("PRIVATE_KEY_ONE and PRIVATE_KEY_TWO are required")
	}

	switch cfg.Store.Backend {
	case StorePostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required for the postgres store")
		}
	case StoreDynamoDB, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	key, err := parseEncryptionKey(getEnv("SECRET_ENCRYPTION_KEY", ""))
	if err != nil {
		return nil, err
	}
	cfg.Store.EncryptionKey = key

	if env == "production" && key == nil {
		return nil, fmt.Errorf("SECRET_ENCRYPTION_KEY is required in production")
	}

	return cfg, nil
}

// parseEncryptionKey decodes the optional 32-byte hex sealing key
func parseEncryptionKey(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}

	key, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
	if err != nil {
		return nil, fmt.Errorf("SECRET_ENCRYPTION_KEY must be hex encoded")
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("SECRET_ENCRYPTION_KEY must be 32 bytes (64 hex characters), got %d bytes", len(key))
	}

	return key, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal >= 0 {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	items := strings.Split(value, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return splitList(getEnv("ALLOWED_ORIGINS", ""))
	}

	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		return splitList(origins)
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
	}
}
