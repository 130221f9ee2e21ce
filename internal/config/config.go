package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the complete console configuration. Values load
// from an optional TOML file, then environment variables override.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	Minio       MinioConfig       `toml:"minio"`
	Flutterwave FlutterwaveConfig `toml:"flutterwave"`
	Email       EmailConfig       `toml:"email"`
}

type ServerConfig struct {
	Port          string `toml:"port"`
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTL      int    `toml:"token_ttl_seconds"`
	ConsoleURL    string `toml:"console_url"`
	EnableSwagger bool   `toml:"enable_swagger"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

type FlutterwaveConfig struct {
	SecretKey string `toml:"secret_key"`
	Currency  string `toml:"currency"`
}

type EmailConfig struct {
	RelayURL string `toml:"relay_url"`
}

// Load reads the config file when present and applies environment
// overrides. A missing file is not an error: env vars alone are enough
// for containerized deployments.
func Load(filename string) (*Config, error) {
	cfg := defaults()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if _, err := toml.DecodeFile(filename, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			TokenTTL:      3600,
			ConsoleURL:    "http://localhost:3000",
			EnableSwagger: true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "tenant-branding",
		},
		Flutterwave: FlutterwaveConfig{
			Currency: "NGN",
		},
	}
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Server.ConsoleURL, "CONSOLE_URL")
	setInt(&c.Server.TokenTTL, "TOKEN_TTL_SECONDS")

	setString(&c.Database.URL, "DATABASE_URL")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setBool(&c.Minio.UseSSL, "MINIO_USE_SSL")

	setString(&c.Flutterwave.SecretKey, "FLUTTERWAVE_SECRET_KEY")
	setString(&c.Flutterwave.Currency, "FLUTTERWAVE_CURRENCY")

	setString(&c.Email.RelayURL, "EMAIL_RELAY_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
