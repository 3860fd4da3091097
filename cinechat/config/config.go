package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL     string `yaml:"api_base_url"`
	ListenAddr     string `yaml:"listen_addr"`
	LocalStorePath string `yaml:"local_store_path"`
	LogDir         string `yaml:"log_dir"`
	MinIOEndpoint  string `yaml:"minio_endpoint"`
	MinIOAccessKey string `yaml:"minio_access_key"`
	MinIOSecretKey string `yaml:"minio_secret_key"`
	MinIOBucket    string `yaml:"minio_bucket"`
}

// LoadConfig layers: defaults < config.yaml (or CINECHAT_CONFIG) < env vars.
// A missing .env or config file is not an error.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:     "https://agentic-movie-recommendation-system-api-7.onrender.com",
		ListenAddr:     ":8787",
		LocalStorePath: "./cinechat.db",
		LogDir:         "./logs",
		MinIOBucket:    "cinechat-posters",
	}

	path := os.Getenv("CINECHAT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &cfg)
	}

	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.LocalStorePath = getEnv("LOCAL_STORE_PATH", cfg.LocalStorePath)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.MinIOEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinIOEndpoint)
	cfg.MinIOAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIOAccessKey)
	cfg.MinIOSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIOSecretKey)
	cfg.MinIOBucket = getEnv("MINIO_BUCKET", cfg.MinIOBucket)
	return cfg
}

// Redacted returns a copy of the config safe to log.
func (c Config) Redacted() Config {
	if c.MinIOSecretKey != "" {
		c.MinIOSecretKey = "***"
	}
	return c
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
