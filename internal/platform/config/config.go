package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Customer management collaborator
	CustomerServiceURL     string
	CustomerServiceTimeout time.Duration

	// Rate limiting for the transaction endpoints
	RateLimitPeriod   time.Duration
	RateLimitRequests int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("CUSTOMER_SERVICE_URL", "http://localhost:8081")
	viper.SetDefault("CUSTOMER_SERVICE_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_PERIOD", "1m")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.CustomerServiceURL = viper.GetString("CUSTOMER_SERVICE_URL")

	customerTimeoutStr := viper.GetString("CUSTOMER_SERVICE_TIMEOUT")
	customerTimeout, err := time.ParseDuration(customerTimeoutStr)
	if err != nil {
		customerTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for CUSTOMER_SERVICE_TIMEOUT ('%s'). Defaulting to %s.\n", customerTimeoutStr, customerTimeout)
	}
	cfg.CustomerServiceTimeout = customerTimeout

	ratePeriodStr := viper.GetString("RATE_LIMIT_PERIOD")
	ratePeriod, err := time.ParseDuration(ratePeriodStr)
	if err != nil {
		ratePeriod = time.Minute
		log.Printf("Warning: Invalid value for RATE_LIMIT_PERIOD ('%s'). Defaulting to %s.\n", ratePeriodStr, ratePeriod)
	}
	cfg.RateLimitPeriod = ratePeriod
	cfg.RateLimitRequests = viper.GetInt64("RATE_LIMIT_REQUESTS")

	return cfg, nil
}
