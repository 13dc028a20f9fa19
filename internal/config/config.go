package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For cache TTL

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	DBDriver        string        // Database driver: mysql or postgres
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name
	DBMaxOpenConns  int           // Connection pool size
	DBMaxIdleConns  int           // Idle connections kept in the pool
	JWTSecret       string        // JWT secret key
	RedisAddr       string        // Redis server address
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	CacheTTL        time.Duration // Read cache lifetime
	TxRetryAttempts int           // Attempts for a transfer or toggle under contention
	IsProd          bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	cacheTTL := time.Duration(getIntEnv("CACHE_TTL_SECONDS", 60)) * time.Second // Cache lifetime
	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),                         // Application port
		DBDriver:        getEnv("DB_DRIVER", DriverMySQL),                   // Database driver
		DBUser:          os.Getenv("DB_USER"),                               // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                           // Database password
		DBHost:          getEnv("DB_HOST", "localhost"),                     // Database host
		DBPort:          os.Getenv("DB_PORT"),                               // Database port
		DBName:          os.Getenv("DB_NAME"),                               // Database name
		DBMaxOpenConns:  getIntEnv("DB_MAX_OPEN_CONNS", 50),                 // Pool size
		DBMaxIdleConns:  getIntEnv("DB_MAX_IDLE_CONNS", 10),                 // Idle pool size
		JWTSecret:       os.Getenv("JWT_SECRET"),                            // JWT secret key
		RedisAddr:       os.Getenv("REDIS_ADDR"),                            // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                            // Redis password
		RedisDB:         getIntEnv("REDIS_DB", 0),                           // Redis database number
		CacheTTL:        cacheTTL,                                           // Cache lifetime
		TxRetryAttempts: getIntEnv("TX_RETRY_ATTEMPTS", 3),                  // Bounded retries
		IsProd:          os.Getenv("IS_PROD") == "true",                     // Is production environment
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		port := c.DBPort
		if port == "" {
			port = "5432" // Default PostgreSQL port
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	}
	port := c.DBPort
	if port == "" {
		port = "3306" // Default MySQL port
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getIntEnv returns the variable as int or a fallback when unset or malformed
func getIntEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
