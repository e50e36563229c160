package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the semdex pipeline.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
}

// EmbeddingConfig selects providers and the canonical vector width.
// Changing canonical_dim invalidates every previously stored vector
// and requires full re-embedding.
type EmbeddingConfig struct {
	CanonicalDim int                  `yaml:"canonical_dim"`
	Primary      string               `yaml:"primary"`   // "local" or "remote"
	Secondary    string               `yaml:"secondary"` // fallback provider, "" disables
	Local        LocalProviderConfig  `yaml:"local"`
	Remote       RemoteProviderConfig `yaml:"remote"`
	Cache        CacheConfig          `yaml:"cache"`
}

// LocalProviderConfig holds local word-vector model configuration.
type LocalProviderConfig struct {
	Dimension int    `yaml:"dimension"`
	ModelPath string `yaml:"model_path"`
}

// RemoteProviderConfig holds remote embedding API configuration. The
// API key is resolved through the secret resolver under Secret.
type RemoteProviderConfig struct {
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	Dimension      int    `yaml:"dimension"`
	Secret         string `yaml:"secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig bounds the repeated-text embedding cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxSize    int  `yaml:"max_size"`
	TTLMinutes int  `yaml:"ttl_minutes"`
}

// StoreConfig selects the chunk store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "bolt", "sqlite", or "memory"
}

// SecretsConfig configures secret resolution: a vault service as the
// primary source and environment variables as the static fallback,
// mapped by logical secret name.
type SecretsConfig struct {
	VaultURL    string            `yaml:"vault_url"`
	VaultKeyEnv string            `yaml:"vault_key_env"`
	Static      map[string]string `yaml:"static"`
	TTLMinutes  int               `yaml:"ttl_minutes"`
}

// IngestConfig holds file-walking and chunking configuration.
type IngestConfig struct {
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkWords   int      `yaml:"chunk_words"`
	OverlapWords int      `yaml:"overlap_words"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			CanonicalDim: 1536,
			Primary:      "local",
			Secondary:    "remote",
			Local: LocalProviderConfig{
				Dimension: 384,
			},
			Remote: RemoteProviderConfig{
				Model:          "text-embedding-3-small",
				BaseURL:        "https://api.openai.com/v1",
				Dimension:      1536,
				Secret:         "embedding_api_key",
				TimeoutSeconds: 60,
			},
			Cache: CacheConfig{
				Enabled:    true,
				MaxSize:    1024,
				TTLMinutes: 10,
			},
		},
		Store: StoreConfig{
			Driver: "bolt",
		},
		Secrets: SecretsConfig{
			Static: map[string]string{
				"embedding_api_key": "OPENAI_API_KEY",
			},
			TTLMinutes: 5,
		},
		Ingest: IngestConfig{
			Excludes:     []string{"**/node_modules/**", "**/.git/**", "**/.semdex/**"},
			ChunkWords:   500,
			OverlapWords: 50,
		},
		Retrieve: RetrieveConfig{
			TopK: 5,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semdex.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "semdex.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".semdex", "config.yaml")
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
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DataDir returns the data directory under root, creating it lazily
// is the caller's concern.
func DataDir(root string) string {
	return filepath.Join(root, ".semdex")
}

// IndexPath returns the store file path for the configured driver.
func IndexPath(root, driver string) string {
	name := "index.db"
	if driver == "sqlite" {
		name = "index.sqlite"
	}
	return filepath.Join(DataDir(root), name)
}
