package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	API       APIConfig       `json:"api"`
	Redis     RedisConfig     `json:"redis"`
	Session   SessionConfig   `json:"session"`
	UI        UIConfig        `json:"ui"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
}

// APIConfig points at the backend REST service this app renders pages for.
type APIConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

type RedisConfig struct {
	Addr         string        `json:"addr"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type SessionConfig struct {
	TTL          time.Duration `json:"ttl"`
	UserCacheTTL time.Duration `json:"user_cache_ttl"`
}

type UIConfig struct {
	PageSize       int           `json:"page_size"`
	SearchDebounce time.Duration `json:"search_debounce"`
}

// RateLimitConfig throttles outgoing calls to the backend API.
type RateLimitConfig struct {
	RequestsPerSec float64 `json:"requests_per_second"`
	Burst          int     `json:"burst"`
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnv("HOST", "localhost"),
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:4000"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Session: SessionConfig{
			TTL:          getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			UserCacheTTL: getEnvAsDuration("USER_CACHE_TTL", 5*time.Minute),
		},
		UI: UIConfig{
			PageSize:       getEnvAsInt("PAGE_SIZE", 6),
			SearchDebounce: getEnvAsDuration("SEARCH_DEBOUNCE", 250*time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSec: getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:          getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}

	if !strings.HasPrefix(config.API.BaseURL, "http://") && !strings.HasPrefix(config.API.BaseURL, "https://") {
		return nil, fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", config.API.BaseURL)
	}

	if config.IsProduction() && strings.Contains(config.API.BaseURL, "localhost") {
		return nil, fmt.Errorf("API_BASE_URL must be set explicitly in production")
	}

	if config.UI.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", config.UI.PageSize)
	}

	return config, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// UseRedis reports whether session state should live in redis rather than
// the in-process cache.
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
