// Package config provides configuration loading and structs for the naitei server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Chat        ChatConfig        `yaml:"chat"`
	Datasets    DatasetsConfig    `yaml:"datasets"`
	Search      SearchConfig      `yaml:"search"`
	Certificate CertificateConfig `yaml:"certificate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds paths for the database and indices.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	VectorIndexPath  string `yaml:"vector_index_path"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
	UploadPath       string `yaml:"upload_path"`
}

// EmbeddingConfig holds embedder settings. Provider selects the
// implementation: "onnx" (the default) loads the model at ModelPath and
// reports model-unavailable on every call if loading fails; "hash" runs the
// deterministic hash embedder without a model.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// ChatConfig holds response generation settings. APIKeyEnv names the
// environment variable holding the provider key; when unset or empty the
// template generator is used.
type ChatConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// DatasetsConfig holds seed data locations. When Watch is true the directory
// is watched and changed files are re-seeded.
type DatasetsConfig struct {
	Dir           string `yaml:"dir"`
	JobsFile      string `yaml:"jobs_file"`
	KnowledgeFile string `yaml:"knowledge_file"`
	Watch         bool   `yaml:"watch"`
}

// SearchConfig holds similarity search limits.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	TopK         int `yaml:"top_k"`
}

// CertificateConfig holds certificate rendering settings.
type CertificateConfig struct {
	VerificationBaseURL string `yaml:"verification_base_url"`
	QRSize              int    `yaml:"qr_size"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	cfg.Storage.UploadPath = expandPath(cfg.Storage.UploadPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Datasets.Dir = expandPath(cfg.Datasets.Dir, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
