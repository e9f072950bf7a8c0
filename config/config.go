package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the tutor assistant.
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Index      IndexConfig      `yaml:"index"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	WebSearch  WebSearchConfig  `yaml:"websearch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EmbeddingConfig configures the embedding capability.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai" (any OpenAI-compatible endpoint) or "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url"`    // endpoint base, "/embeddings" is appended
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	Dimension int    `yaml:"dimension"`   // used by the mock provider and as an override
	BatchSize int    `yaml:"batch_size"`
}

// GenerationConfig configures the streaming chat-completion endpoint.
type GenerationConfig struct {
	Model       string  `yaml:"model"`
	URL         string  `yaml:"url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"` // connection and first-response only, not inter-token
}

// IndexConfig configures index storage and document chunking.
type IndexConfig struct {
	Dir          string `yaml:"dir"` // holds the vector artifacts and history.db
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// RetrieveConfig configures retrieval and prompt composition.
type RetrieveConfig struct {
	TopK         int `yaml:"top_k"`
	SnippetChars int `yaml:"snippet_chars"` // per-hit snippet cap in the prompt
	MemoryTurns  int `yaml:"memory_turns"`  // conversation turns fed to the model
}

// WebSearchConfig configures the optional live web-search fallback.
// The fallback is disabled when no credential is present in APIKeyEnv.
type WebSearchConfig struct {
	URL       string `yaml:"url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Count     int    `yaml:"count"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		Generation: GenerationConfig{
			Model:       "llama-3.1-8b-instant",
			URL:         "https://api.groq.com/openai/v1/chat/completions",
			APIKeyEnv:   "GROQ_API_KEY",
			MaxTokens:   1000,
			Temperature: 0.25,
			TimeoutSecs: 30,
		},
		Index: IndexConfig{
			Dir:          "./vectorstore",
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Retrieve: RetrieveConfig{
			TopK:         5,
			SnippetChars: 1000,
			MemoryTurns:  6,
		},
		WebSearch: WebSearchConfig{
			URL:       "https://api.bing.microsoft.com/v7.0/search",
			APIKeyEnv: "BING_SEARCH_API_KEY",
			Count:     3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, returning defaults if the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for edututor.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "edututor.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".edututor", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HistoryDBPath returns the path to the conversation history database.
func HistoryDBPath(indexDir string) string {
	return filepath.Join(indexDir, "history.db")
}

// EnsureIndexDir ensures the index storage directory exists.
func EnsureIndexDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
