package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	PCSummary PCSummaryConfig `yaml:"pcsummary"`
}

// PCSummaryConfig is the project configuration.
type PCSummaryConfig struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig controls the Prisma Cloud API client.
type APIConfig struct {
	URL            string        `yaml:"url"`
	AccessKey      string        `yaml:"access_key"`
	SecretKey      string        `yaml:"secret_key"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
}

// StorageConfig controls where collected documents are kept.
type StorageConfig struct {
	Mode  string             `yaml:"mode"` // file|redis
	File  FileStorageConfig  `yaml:"file"`
	Redis RedisStorageConfig `yaml:"redis"`
}

// FileStorageConfig config for local document files.
type FileStorageConfig struct {
	Dir string `yaml:"dir"`
}

// RedisStorageConfig config for Redis-held documents.
type RedisStorageConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// Environment variables consulted for credentials.
const (
	EnvEndpoint  = "PRISMA_API_ENDPOINT"
	EnvAccessKey = "PRISMA_ACCESS_KEY"
	EnvSecretKey = "PRISMA_SECRET_KEY"
)

// Default returns a config with logging enabled to the console.
func Default() *Config {
	cfg := &Config{}
	cfg.PCSummary.Logging.Enabled = true
	cfg.PCSummary.Logging.Console = true
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault reads path, falling back to Default when the file is absent.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	ApplyDefaults(cfg)
	return cfg, true, nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.PCSummary.API.ConnectTimeout <= 0 {
		cfg.PCSummary.API.ConnectTimeout = 30 * time.Second
	}
	if cfg.PCSummary.API.ReadTimeout <= 0 {
		cfg.PCSummary.API.ReadTimeout = 300 * time.Second
	}

	if cfg.PCSummary.Storage.Mode == "" {
		cfg.PCSummary.Storage.Mode = "file"
	}
	if cfg.PCSummary.Storage.File.Dir == "" {
		cfg.PCSummary.Storage.File.Dir = "."
	}
	if cfg.PCSummary.Storage.Redis.Addr == "" {
		cfg.PCSummary.Storage.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.PCSummary.Storage.Redis.KeyPrefix == "" {
		cfg.PCSummary.Storage.Redis.KeyPrefix = "pcsummary"
	}

	if cfg.PCSummary.Logging.Level == "" {
		cfg.PCSummary.Logging.Level = "info"
	}
}

// LoadEnv reads an optional .env file and fills API credentials that are
// still empty from the environment.
func LoadEnv(cfg *Config, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	api := &cfg.PCSummary.API
	if api.URL == "" {
		api.URL = os.Getenv(EnvEndpoint)
	}
	if api.AccessKey == "" {
		api.AccessKey = os.Getenv(EnvAccessKey)
	}
	if api.SecretKey == "" {
		api.SecretKey = os.Getenv(EnvSecretKey)
	}
	return nil
}
