package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all environment-sourced settings. Everything downstream
// receives values from here instead of reading os.Getenv directly.
type Config struct {
	AppID             string
	AppSecret         string
	BaseURL           string
	TargetTableName   string
	VerificationToken string
	EncryptKey        string

	RedisHost string
	RedisPort int
	RedisDB   int

	// Optional archive database (Postgres). Empty DBName disables archiving.
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	Port  int
	Debug bool
}

// Load reads configuration from the environment. APP_ID, APP_SECRET and
// BASE_URL are required; everything else has a default or is optional.
func Load() (*Config, error) {
	cfg := &Config{
		AppID:             os.Getenv("APP_ID"),
		AppSecret:         os.Getenv("APP_SECRET"),
		BaseURL:           os.Getenv("BASE_URL"),
		TargetTableName:   getEnv("TARGET_TABLE_NAME", "⏰客户管理表"),
		VerificationToken: os.Getenv("VERIFICATION_TOKEN"),
		EncryptKey:        os.Getenv("ENCRYPT_KEY"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnvInt("REDIS_PORT", 6379),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnvInt("DB_PORT", 5432),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: os.Getenv("DB_NAME"),

		Port:  getEnvInt("PORT", 5000),
		Debug: os.Getenv("DEBUG") == "true",
	}

	if cfg.AppID == "" || cfg.AppSecret == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("incomplete configuration: APP_ID, APP_SECRET and BASE_URL are required")
	}

	return cfg, nil
}

// ArchiveEnabled reports whether the optional Postgres archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DBName != ""
}

// RedisAddr returns the host:port address for the session store.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
