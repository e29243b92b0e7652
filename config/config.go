package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server Configuration
	Port        string
	Environment string
	Debug       bool

	// Database Configuration
	MongoURI string
	DBName   string

	// JWT Configuration
	JWTSecret      string
	AccessTokenTTL time.Duration

	// Storage Configuration
	StorageProvider string
	UploadPath      string
	MaxUploadSize   int64

	// S3 Configuration (used when StorageProvider == "s3")
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string

	// Security Configuration
	CORSAllowedOrigins []string

	// Application Configuration
	AppName    string
	AppVersion string
}

var AppConfig *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Debug:       getEnvAsBool("DEBUG", true),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "filevault"),

		JWTSecret:      getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		AccessTokenTTL: getEnvAsDuration("ACCESS_TOKEN_TTL", "24h"),

		StorageProvider: getEnv("STORAGE_PROVIDER", "local"),
		UploadPath:      getEnv("UPLOAD_PATH", "./uploads"),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_SIZE", 104857600), // 100MB

		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8080",
		}),

		AppName:    getEnv("APP_NAME", "filevault"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
	}

	AppConfig = config
	return config
}

// ValidateConfig validates required configuration values
func (c *Config) ValidateConfig() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.DBName == "" {
		return errors.New("DB_NAME is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorageProvider == "s3" && c.S3Bucket == "" {
		return errors.New("S3_BUCKET is required when STORAGE_PROVIDER is s3")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	parsed, _ := time.ParseDuration(defaultValue)
	return parsed
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
