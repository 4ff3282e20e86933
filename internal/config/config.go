package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Tax       TaxConfig
	Brokerage BrokerageConfig
	Schedule  ScheduleConfig
	Admin     AdminConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// TaxConfig holds the tax policy in effect for new withdrawals.
// Policy is "quarterly_settlement" (default) or "withhold_at_withdrawal".
type TaxConfig struct {
	Policy string
	Rate   float64
}

// BrokerageConfig holds the fernet key used to decrypt the stored brokerage
// API token. Account and endpoint settings live in the database.
type BrokerageConfig struct {
	FernetKey string
}

// ScheduleConfig holds cron expressions for the scheduled jobs.
type ScheduleConfig struct {
	NavClose   string // daily post-market-close NAV run
	Validation string // nightly validation sweep
}

// AdminConfig holds the API key protecting administrative endpoints.
type AdminConfig struct {
	APIKey string
}

// Supported tax policy names.
const (
	TaxPolicyQuarterlySettlement  = "quarterly_settlement"
	TaxPolicyWithholdAtWithdrawal = "withhold_at_withdrawal"
)

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	taxRate, err := getEnvFloat("TAX_RATE", 0.37)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fund_accounting.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Tax: TaxConfig{
			Policy: getEnv("TAX_POLICY", TaxPolicyQuarterlySettlement),
			Rate:   taxRate,
		},
		Brokerage: BrokerageConfig{
			FernetKey: getEnv("BROKERAGE_FERNET_KEY", ""),
		},
		Schedule: ScheduleConfig{
			// Weekdays at 22:30 UTC, after US market close prints settle.
			NavClose:   getEnv("NAV_CLOSE_CRON", "30 22 * * 1-5"),
			Validation: getEnv("VALIDATION_CRON", "0 2 * * *"),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
	}

	if config.Tax.Policy != TaxPolicyQuarterlySettlement &&
		config.Tax.Policy != TaxPolicyWithholdAtWithdrawal {
		return nil, fmt.Errorf("unknown tax policy: %s", config.Tax.Policy)
	}
	if config.Tax.Rate < 0 || config.Tax.Rate >= 1 {
		return nil, fmt.Errorf("tax rate must be in [0, 1): %v", config.Tax.Rate)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
