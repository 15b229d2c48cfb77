package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL          string
	Port                 string
	GoEnv                string
	LogLevel             string
	Auth0Domain          string
	Auth0Audience        string
	CORSAllowedOrigins   []string
	AWSRegion            string
	AWSS3Bucket          string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	DeliveryCacheTTL     time.Duration
	MongoURI             string
	MongoDatabase        string
	MongoAuditCollection string
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DELIVERY_CACHE_TTL", "5m")
	v.SetDefault("MONGO_DATABASE", "baskets")
	v.SetDefault("MONGO_AUDIT_COLLECTION", "order_audit")

	cfg := &Config{
		DatabaseURL:          v.GetString("DATABASE_URL"),
		Port:                 v.GetString("PORT"),
		GoEnv:                v.GetString("GO_ENV"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		Auth0Domain:          v.GetString("AUTH0_DOMAIN"),
		Auth0Audience:        v.GetString("AUTH0_AUDIENCE"),
		CORSAllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		AWSRegion:            v.GetString("AWS_REGION"),
		AWSS3Bucket:          v.GetString("AWS_S3_BUCKET"),
		AWSAccessKeyID:       v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		DeliveryCacheTTL:     v.GetDuration("DELIVERY_CACHE_TTL"),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDatabase:        v.GetString("MONGO_DATABASE"),
		MongoAuditCollection: v.GetString("MONGO_AUDIT_COLLECTION"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	current = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DeliveryCacheTTL < 0 {
		return fmt.Errorf("DELIVERY_CACHE_TTL must not be negative")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// ExportStorageEnabled reports whether order form exports can be uploaded to S3
func (c *Config) ExportStorageEnabled() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration loaded by Load
func GetConfig() *Config {
	return current
}

// SetConfig sets the process configuration (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
