package configs

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Quote    QuoteConfig
	Trading  TradingConfig
	Auth     AuthConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	OpsPort string
	Env     string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// QuoteConfig holds quote lookup configuration
type QuoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TradingConfig holds trading configuration
type TradingConfig struct {
	StartingCash decimal.Decimal
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	SessionTTL time.Duration
	BcryptCost int
	Password   PasswordPolicyConfig
}

// PasswordPolicyConfig enumerates the password strength rules.
// Each rule can be switched off via environment variables.
type PasswordPolicyConfig struct {
	MinLength     int
	RequireLower  bool
	RequireUpper  bool
	RequireDigit  bool
	RequireSymbol bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			OpsPort: getEnv("OPS_PORT", "8081"),
			Env:     getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Quote: QuoteConfig{
			BaseURL: getEnv("QUOTE_API_URL", "http://localhost:8000"),
			Timeout: getEnvDuration("QUOTE_API_TIMEOUT", 10*time.Second),
		},
		Trading: TradingConfig{
			StartingCash: getEnvDecimal("STARTING_CASH", decimal.NewFromInt(10000)),
		},
		Auth: AuthConfig{
			SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
			Password: PasswordPolicyConfig{
				MinLength:     getEnvInt("PASSWORD_MIN_LENGTH", 8),
				RequireLower:  getEnvBool("PASSWORD_REQUIRE_LOWER", true),
				RequireUpper:  getEnvBool("PASSWORD_REQUIRE_UPPER", true),
				RequireDigit:  getEnvBool("PASSWORD_REQUIRE_DIGIT", true),
				RequireSymbol: getEnvBool("PASSWORD_REQUIRE_SYMBOL", false),
			},
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
