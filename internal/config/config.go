package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	JWTSecret  string

	// CartStore selects the cart storage backend: postgres or memory.
	CartStore string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	ProductBreakerMaxFailures uint32
	ProductBreakerOpenTimeout time.Duration
	ProductLookupTimeout      time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		AppPort:    envOrDefault("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		CartStore:  envOrDefault("CART_STORE", StorePostgres),

		RequestTimeout:  envSeconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
		ShutdownTimeout: envSeconds("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),

		ProductBreakerMaxFailures: uint32(envInt("PRODUCT_BREAKER_MAX_FAILURES", 5)),
		ProductBreakerOpenTimeout: envSeconds("PRODUCT_BREAKER_OPEN_SECONDS", 30*time.Second),
		ProductLookupTimeout:      envSeconds("PRODUCT_LOOKUP_TIMEOUT_SECONDS", 5*time.Second),

		RateLimitRPS:   float64(envInt("RATE_LIMIT_RPS", 10)),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly: DB_HOST is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("Environment variables not loaded properly: JWT_SECRET is required")
	}

	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
