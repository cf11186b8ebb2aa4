package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Ayrshare struct {
	BaseURL string
	Timeout time.Duration
}

type Delivery struct {
	Concurrency int
	CronSpec    string
	// FunctionSecret guards the batch trigger endpoint when set.
	FunctionSecret string
}

type Config struct {
	Port        string
	PostgresURI string
	RedisURI    string
	FrontendURL string
	R2          R2
	Ayrshare    Ayrshare
	Delivery    Delivery
	SecretKey   string
	CookieName  string
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Ayrshare: Ayrshare{
			BaseURL: getEnv("AYRSHARE_BASE_URL", "https://app.ayrshare.com"),
			Timeout: getEnvDuration("AYRSHARE_TIMEOUT", 60*time.Second),
		},
		Delivery: Delivery{
			Concurrency:    getEnvInt("DELIVERY_CONCURRENCY", 10),
			CronSpec:       getEnv("DELIVERY_CRON", "@every 1m"),
			FunctionSecret: getEnv("FUNCTION_SECRET", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "session"),
	}
}

// Validate rejects settings the service cannot run with. SECRET_KEY seals
// stored credentials with AES, so it must be a valid AES key size.
func (c *Config) Validate() error {
	switch len(c.SecretKey) {
	case 16, 24, 32:
		return nil
	}
	return fmt.Errorf("SECRET_KEY must be 16, 24 or 32 bytes, got %d", len(c.SecretKey))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
