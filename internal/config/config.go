package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Mail      MailConfig      `yaml:"mail"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Digest    DigestConfig    `yaml:"digest"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// JWTConfig carries the token signing key, algorithm and lifetimes.
// Algorithm must be one of HS256 or HS512.
type JWTConfig struct {
	Secret        string `yaml:"secret"`
	Algorithm     string `yaml:"algorithm"`
	AccessMinutes int    `yaml:"access_minutes"`
	RefreshHours  int    `yaml:"refresh_hours"`
	EmailHours    int    `yaml:"email_hours"`
}

func (c *JWTConfig) AccessTTL() time.Duration {
	if c.AccessMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.AccessMinutes) * time.Minute
}

func (c *JWTConfig) RefreshTTL() time.Duration {
	if c.RefreshHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.RefreshHours) * time.Hour
}

func (c *JWTConfig) EmailTTL() time.Duration {
	if c.EmailHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.EmailHours) * time.Hour
}

// MailConfig for SMTP delivery. An empty Host disables outbound email.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	UseTLS   bool   `yaml:"use_tls"`
}

// RedisConfig for the optional async task queue and user cache
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig for the S3-compatible avatar store (MinIO-style endpoints work
// via the endpoint override and static credentials).
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// DigestConfig controls the daily birthday digest emails.
type DigestConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Time       string `yaml:"time"` // HH:MM
	WindowDays int    `yaml:"window_days"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; its variables feed the env overrides below
	_ = godotenv.Load()

	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		fileCfg := DefaultConfig()
		if err := yaml.Unmarshal(data, fileCfg); err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	cfg.overrideFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "contacthub.db",
		},
		JWT: JWTConfig{
			Secret:        "contacthub-secret-key-change-in-production",
			Algorithm:     "HS256",
			AccessMinutes: 15,
			RefreshHours:  168,
			EmailHours:    24,
		},
		Mail: MailConfig{
			Port:     587,
			FromName: "ContactHub",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Storage: StorageConfig{
			Enabled: false,
			Region:  "us-east-1",
			Bucket:  "avatars",
		},
		Digest: DigestConfig{
			Enabled:    false,
			Time:       "08:00",
			WindowDays: 7,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 10,
		},
	}
}

func (c *Config) validate() error {
	switch c.JWT.Algorithm {
	case "HS256", "HS512":
	default:
		return fmt.Errorf("unsupported jwt algorithm: %s (allowed: HS256, HS512)", c.JWT.Algorithm)
	}
	return nil
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if alg := os.Getenv("JWT_ALGORITHM"); alg != "" {
		c.JWT.Algorithm = alg
	}
	if host := os.Getenv("MAIL_HOST"); host != "" {
		c.Mail.Host = host
	}
	if port := os.Getenv("MAIL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Mail.Port = p
		}
	}
	if username := os.Getenv("MAIL_USERNAME"); username != "" {
		c.Mail.Username = username
	}
	if password := os.Getenv("MAIL_PASSWORD"); password != "" {
		c.Mail.Password = password
	}
	if from := os.Getenv("MAIL_FROM"); from != "" {
		c.Mail.From = from
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		c.Storage.Enabled = true
		c.Storage.Endpoint = endpoint
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		c.Storage.Region = region
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		c.Storage.AccessKey = key
	}
	if key := os.Getenv("S3_SECRET_KEY"); key != "" {
		c.Storage.SecretKey = key
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	// Remove redis:// prefix
	url := strings.TrimPrefix(redisURL, "redis://")

	// Extract password if present
	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	// Extract db number if present
	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	// Remaining is host:port
	c.Redis.Addr = url
}
