package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Serving  ServingConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds PostgreSQL connection settings shared by both logical
// databases. Credentials are not part of the config: every connection is
// opened on behalf of the requesting user with their forwarded token.
type DatabaseConfig struct {
	Host    string
	Port    int
	SSLMode string
	AppName string

	// RiskDatabase is the read-model holding the student risk analysis
	// tables; InterventionDatabase is the write-model for interventions.
	RiskDatabase         string
	InterventionDatabase string

	ConnectTimeoutSeconds int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServingConfig holds model-serving endpoint configuration
type ServingConfig struct {
	// Endpoint is the serving endpoint name. Empty means the AI
	// recommendation feature is disabled, not a startup error.
	Endpoint string
	BaseURL  string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	riskDB := getEnv("DATABASE_REMEDIATION_DATA", "student_remediation_db")

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:                  getEnv("PGHOST", "localhost"),
			Port:                  getEnvAsInt("PGPORT", 5432),
			SSLMode:               getEnv("PGSSLMODE", "require"),
			AppName:               getEnv("PGAPPNAME", "student-risk-backend"),
			RiskDatabase:          riskDB,
			InterventionDatabase:  getEnv("DATABASE_INTERVENTIONS", riskDB),
			ConnectTimeoutSeconds: getEnvAsInt("PGCONNECT_TIMEOUT", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Serving: ServingConfig{
			Endpoint: getEnv("SERVING_ENDPOINT", ""),
			BaseURL:  getEnv("SERVING_BASE_URL", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "student-risk-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// UserDSN returns a PostgreSQL connection string for the named logical
// database, authenticated as the given user. The forwarded access token
// doubles as the password.
func (c *DatabaseConfig) UserDSN(dbname, user, token string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s connect_timeout=%d",
		c.Host, c.Port, user, token, dbname, c.SSLMode, c.AppName, c.ConnectTimeoutSeconds,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
