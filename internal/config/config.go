package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig locates the precomputed artifacts.
type DataConfig struct {
	Dir        string `yaml:"dir"`
	Catalog    string `yaml:"catalog"`
	Similarity string `yaml:"similarity"`
	Vectorizer string `yaml:"vectorizer"`
	Vectors    string `yaml:"vectors"`
}

// RecommenderConfig tunes result lists. A negative BlurbSentences turns
// blurbs off; zero means the default.
type RecommenderConfig struct {
	TopK           int `yaml:"top_k"`
	BlurbSentences int `yaml:"blurb_sentences"`
}

// VectorStoreConfig selects and configures where tag vectors are searched.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// TranslatorConfig selects the keyword translator.
type TranslatorConfig struct {
	Type           string                `yaml:"type"`
	LibreTranslate *LibreTranslateConfig `yaml:"libretranslate,omitempty"`
}

// LibreTranslateConfig configures a LibreTranslate-compatible HTTP API.
type LibreTranslateConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Source      string `yaml:"source"`
	Target      string `yaml:"target"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// ReviewsConfig configures the review file. A negative RateLimitPerMinute
// turns the review rate limit off; zero means the default.
type ReviewsConfig struct {
	Path               string `yaml:"path"`
	RecentLimit        int    `yaml:"recent_limit"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// ServerConfig configures the HTTP listener.
// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP; only
// enable it behind a reverse proxy that sets those headers.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ShutdownSecs int    `yaml:"shutdown_secs"`
	TrustProxy   bool   `yaml:"trust_proxy"`
}

// LogConfig configures logging. File, when set, receives log output
// instead of stderr; the terminal UI needs this to keep the screen clean.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Recommender RecommenderConfig `yaml:"recommender"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Translator  TranslatorConfig  `yaml:"translator"`
	Reviews     ReviewsConfig     `yaml:"reviews"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/manhwarec/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
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
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown component types and missing sub-configs.
func (c *AppConfig) Validate() error {
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return errors.New("vector_store.qdrant.url is required")
		}
	default:
		return fmt.Errorf("unknown vector store: %s", c.VectorStore.Type)
	}
	switch c.Translator.Type {
	case "none":
	case "libretranslate":
		if c.Translator.LibreTranslate == nil || c.Translator.LibreTranslate.BaseURL == "" {
			return errors.New("translator.libretranslate.base_url is required")
		}
	default:
		return fmt.Errorf("unknown translator: %s", c.Translator.Type)
	}
	if c.Recommender.TopK < 1 {
		return errors.New("recommender.top_k must be positive")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "manhwarec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.Catalog == "" {
		cfg.Data.Catalog = "manhwa_catalog.json.gz"
	}
	if cfg.Data.Similarity == "" {
		cfg.Data.Similarity = "similarity.json.gz"
	}
	if cfg.Data.Vectorizer == "" {
		cfg.Data.Vectorizer = "tag_vectorizer.json.gz"
	}
	if cfg.Data.Vectors == "" {
		cfg.Data.Vectors = "tag_vectors.json.gz"
	}
	if cfg.Recommender.TopK == 0 {
		cfg.Recommender.TopK = 5
	}
	if cfg.Recommender.BlurbSentences == 0 {
		cfg.Recommender.BlurbSentences = 2
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "manhwa_tags"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Translator.Type == "" {
		cfg.Translator.Type = "none"
	}
	if lt := cfg.Translator.LibreTranslate; lt != nil {
		if lt.APIKeyEnv == "" {
			lt.APIKeyEnv = "TRANSLATE_API_KEY"
		}
		if lt.Source == "" {
			lt.Source = "id"
		}
		if lt.Target == "" {
			lt.Target = "en"
		}
		if lt.TimeoutSecs == 0 {
			lt.TimeoutSecs = 10
		}
		if lt.MaxRetries == 0 {
			lt.MaxRetries = 3
		}
	}
	if cfg.Reviews.Path == "" {
		cfg.Reviews.Path = "user_reviews.csv"
	}
	if cfg.Reviews.RecentLimit == 0 {
		cfg.Reviews.RecentLimit = 5
	}
	if cfg.Reviews.RateLimitPerMinute == 0 {
		cfg.Reviews.RateLimitPerMinute = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Server.ShutdownSecs == 0 {
		cfg.Server.ShutdownSecs = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
