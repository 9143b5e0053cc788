// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	AWS         AWSConfig
	Worker      WorkerConfig
	Gemini      GeminiConfig
	Shopify     ShopifyConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type AuthConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region                 string
	AccessKeyID            string
	SecretAccessKey        string
	S3Bucket               string
	CDNDomain              string
	PresignedURLExpiration int // in seconds
}

type WorkerConfig struct {
	EnrichmentQueueURL  string
	CatalogSyncQueueURL string
	EnhancedImagesCount int
	ReceiveWaitSeconds  int
	MaxImageDimension   int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ShopifyConfig struct {
	StoreURL    string
	AccessToken string
	APIVersion  string
	Vendor      string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "kivoa_catalog"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Auth: AuthConfig{
			SecretKey:      getEnv("JWT_SECRET", "dev-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		AWS: AWSConfig{
			Region:                 getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:            getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:        getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:               getEnv("S3_BUCKET_NAME", ""),
			CDNDomain:              getEnv("CDN_DOMAIN", ""),
			PresignedURLExpiration: getEnvAsInt("PRESIGNED_URL_EXPIRATION", 3600),
		},
		Worker: WorkerConfig{
			EnrichmentQueueURL:  getEnv("SQS_QUEUE_URL", ""),
			CatalogSyncQueueURL: getEnv("CATALOG_SYNC_QUEUE_URL", ""),
			EnhancedImagesCount: getEnvAsInt("ENHANCED_IMAGES_COUNT", 3),
			ReceiveWaitSeconds:  getEnvAsInt("SQS_RECEIVE_WAIT_SECONDS", 20),
			MaxImageDimension:   getEnvAsInt("MAX_IMAGE_DIMENSION", 2048),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Shopify: ShopifyConfig{
			StoreURL:    getEnv("SHOPIFY_STORE_URL", ""),
			AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),
			Vendor:      getEnv("SHOPIFY_VENDOR", "Kivoa"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Auth.SecretKey == "dev-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Worker.EnhancedImagesCount < 1 {
		return fmt.Errorf("ENHANCED_IMAGES_COUNT must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
