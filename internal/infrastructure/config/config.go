// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database: "postgres" or "sqlite"
	DBDriver    string
	PostgresURI string
	SQLitePath  string

	// MongoDB event store, disabled when MongoURI is empty
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// NATS event bus, disabled when NatsURL is empty
	NatsURL           string
	NatsSubjectPrefix string

	// Redis event stream, disabled when RedisURL is empty
	RedisURL          string
	RedisStream       string
	RedisStreamMaxLen int

	// Payout gateway
	PayoutEndpoint     string
	PayoutClientID     string
	PayoutClientSecret string
	PayoutTokenURL     string
	PayoutTimeout      time.Duration

	Ledger LedgerConfig
}

// LedgerConfig holds the ledger's roles and economic parameters
type LedgerConfig struct {
	Owner                 string
	FoundingAirline       string
	FoundingAirlineName   string
	MinFund               decimal.Decimal
	MaxPremium            decimal.Decimal
	OracleRegistrationFee decimal.Decimal
	QuorumSize            int
	DirectAdmissionLimit  int
}

// DefaultLedgerConfig returns the stock parameters: 10 unit bond, 1 unit premium cap,
// 1 unit oracle fee, quorum of 3, four founding airlines admitted without votes.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		FoundingAirlineName:   "Airline 1",
		MinFund:               decimal.NewFromInt(10),
		MaxPremium:            decimal.NewFromInt(1),
		OracleRegistrationFee: decimal.NewFromInt(1),
		QuorumSize:            3,
		DirectAdmissionLimit:  4,
	}
}

// Validate checks the ledger parameters
func (c LedgerConfig) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("ledger owner is required")
	}
	if c.FoundingAirline == "" {
		return fmt.Errorf("founding airline is required")
	}
	if !c.MinFund.IsPositive() || !c.MaxPremium.IsPositive() {
		return fmt.Errorf("min fund and max premium must be positive")
	}
	if c.OracleRegistrationFee.IsNegative() {
		return fmt.Errorf("oracle registration fee must not be negative")
	}
	if c.QuorumSize < 1 {
		return fmt.Errorf("quorum size must be at least 1, got %d", c.QuorumSize)
	}
	if c.DirectAdmissionLimit < 1 {
		return fmt.Errorf("direct admission limit must be at least 1, got %d", c.DirectAdmissionLimit)
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	defaults := DefaultLedgerConfig()

	minFund, err := getEnvAsDecimal("LEDGER_MIN_FUND", defaults.MinFund)
	if err != nil {
		return nil, err
	}
	maxPremium, err := getEnvAsDecimal("LEDGER_MAX_PREMIUM", defaults.MaxPremium)
	if err != nil {
		return nil, err
	}
	oracleFee, err := getEnvAsDecimal("LEDGER_ORACLE_FEE", defaults.OracleRegistrationFee)
	if err != nil {
		return nil, err
	}

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=postgres dbname=flightsurety sslmode=disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "flightsurety.db"),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "flightsurety"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		NatsURL:           getEnv("NATS_URL", ""),
		NatsSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "flightsurety"),

		RedisURL:          getEnv("REDIS_URL", ""),
		RedisStream:       getEnv("REDIS_STREAM", "flightsurety:events"),
		RedisStreamMaxLen: getEnvAsInt("REDIS_STREAM_MAXLEN", 100000),

		PayoutEndpoint:     getEnv("PAYOUT_ENDPOINT", ""),
		PayoutClientID:     getEnv("PAYOUT_CLIENT_ID", ""),
		PayoutClientSecret: getEnv("PAYOUT_CLIENT_SECRET", ""),
		PayoutTokenURL:     getEnv("PAYOUT_TOKEN_URL", ""),
		PayoutTimeout:      time.Duration(getEnvAsInt("PAYOUT_TIMEOUT", 30)) * time.Second,

		Ledger: LedgerConfig{
			Owner:                 strings.ToLower(getEnv("LEDGER_OWNER", "")),
			FoundingAirline:       strings.ToLower(getEnv("LEDGER_FOUNDING_AIRLINE", "")),
			FoundingAirlineName:   getEnv("LEDGER_FOUNDING_AIRLINE_NAME", defaults.FoundingAirlineName),
			MinFund:               minFund,
			MaxPremium:            maxPremium,
			OracleRegistrationFee: oracleFee,
			QuorumSize:            getEnvAsInt("LEDGER_QUORUM_SIZE", defaults.QuorumSize),
			DirectAdmissionLimit:  getEnvAsInt("LEDGER_DIRECT_ADMISSION_LIMIT", defaults.DirectAdmissionLimit),
		},
	}

	if config.DBDriver != "postgres" && config.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
	}
	if err := config.Ledger.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
