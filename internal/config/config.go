package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size" toml:"chunk_size"`
	Overlap   int `yaml:"overlap" toml:"overlap"`
}

// StorageConfig selects where the document snapshot lives.
type StorageConfig struct {
	Type string `yaml:"type" toml:"type"`
	Path string `yaml:"path" toml:"path"`
}

// RetrievalConfig configures lexical retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" toml:"top_k"`
}

// LLMConfig selects and configures the language model used for answers.
type LLMConfig struct {
	Provider          string  `yaml:"provider" toml:"provider"`
	Model             string  `yaml:"model" toml:"model"`
	BaseURL           string  `yaml:"base_url" toml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env" toml:"api_key_env"`
	MaxTokens         int     `yaml:"max_tokens" toml:"max_tokens"`
	Temperature       float64 `yaml:"temperature" toml:"temperature"`
	TimeoutSecs       int     `yaml:"timeout_secs" toml:"timeout_secs"`
	RequestsPerMinute int     `yaml:"requests_per_minute" toml:"requests_per_minute"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr" toml:"addr"`
	GinMode     string `yaml:"gin_mode" toml:"gin_mode"`
	MaxUploadMB int    `yaml:"max_upload_mb" toml:"max_upload_mb"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker   ChunkerConfig   `yaml:"chunker" toml:"chunker"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Retrieval RetrievalConfig `yaml:"retrieval" toml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm" toml:"llm"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Files ending in .toml are decoded as TOML, everything else as YAML. Keys
// absent from the file keep their default values.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyConfigDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/docrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	applyConfigDefaults(cfg)
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the application cannot run with.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Chunker.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunker.chunk_size must be positive"))
	}
	if c.Chunker.Overlap < 0 {
		errs = append(errs, errors.New("chunker.overlap must not be negative"))
	}
	if c.Retrieval.TopK < 0 {
		errs = append(errs, errors.New("retrieval.top_k must not be negative"))
	}
	switch c.Storage.Type {
	case "json", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown storage type: %s", c.Storage.Type))
	}
	switch c.LLM.Provider {
	case "gemini", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider: %s", c.LLM.Provider))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, errors.New("llm.max_tokens must not be negative"))
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("llm.requests_per_minute must not be negative"))
	}
	return errors.Join(errs...)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Chunker:   ChunkerConfig{ChunkSize: 500, Overlap: 50},
		Storage:   StorageConfig{Type: "json", Path: "knowledge_base.json"},
		Retrieval: RetrievalConfig{TopK: 5},
		LLM:       LLMConfig{Provider: "gemini", MaxTokens: 1024, Temperature: 0.7, TimeoutSecs: 60},
		Server:    ServerConfig{Addr: "0.0.0.0:5000", GinMode: "debug", MaxUploadMB: 50},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "json"
	}
	if cfg.Storage.Path == "" {
		if cfg.Storage.Type == "sqlite" {
			cfg.Storage.Path = "knowledge_base.db"
		} else {
			cfg.Storage.Path = "knowledge_base.json"
		}
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
	}
	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.LLM.APIKeyEnv == "" {
			cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "gemini-2.0-flash"
		}
	case "openai":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.LLM.APIKeyEnv == "" {
			cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "gpt-4o-mini"
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "http://localhost:11434"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "llama3.2"
		}
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 50
	}
}
