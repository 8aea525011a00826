package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultAPIBaseURL = "https://api.pushtrack360.com"

type Config struct {
	ListenAddr         string `yaml:"listen_addr"`
	DBPath             string `yaml:"db_path"`
	APIBaseURL         string `yaml:"api_base_url"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	PhotoPath          string `yaml:"photo_local_path"`
	CacheMaxItems      int    `yaml:"cache_max_items"`
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`
	LogFile            string `yaml:"log_file"`
}

// Load builds the configuration from defaults, the optional YAML file named by
// FIELDSALES_CONFIG, an optional .env file and finally the process environment.
// A missing .env file is not an error; a named but unreadable YAML file is.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         "127.0.0.1:8080",
		DBPath:             "/data/fieldsales.db",
		APIBaseURL:         DefaultAPIBaseURL,
		HTTPTimeoutSeconds: 30,
		PhotoPath:          "/data/photos",
		CacheMaxItems:      0,
		LogLevel:           "info",
		LogFormat:          "json",
	}

	if path := os.Getenv("FIELDSALES_CONFIG"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", cfg.APIBaseURL), "/")
	cfg.HTTPTimeoutSeconds = getEnvInt("HTTP_TIMEOUT_SECONDS", cfg.HTTPTimeoutSeconds)
	cfg.PhotoPath = getEnv("PHOTO_LOCAL_PATH", cfg.PhotoPath)
	cfg.CacheMaxItems = getEnvInt("CACHE_MAX_ITEMS", cfg.CacheMaxItems)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 30
	}
	if cfg.CacheMaxItems < 0 {
		cfg.CacheMaxItems = 0
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return n
}
