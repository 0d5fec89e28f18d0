package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `yaml:"port"` // e.g. ":8080"
	Mode string `yaml:"mode"` // gin mode: "debug" or "release"
}

// PostgresConfig holds the connection settings for PostgreSQL.
// The database must have the pgvector extension available.
type PostgresConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"sslMode"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// OllamaConfig holds settings for the Ollama backend used for both
// embeddings and chat generation.
type OllamaConfig struct {
	BaseURL        string  `yaml:"baseURL"`        // e.g. "http://localhost:11434"
	ChatModel      string  `yaml:"chatModel"`      // e.g. "qwen3:4b"
	EmbeddingModel string  `yaml:"embeddingModel"` // e.g. "nomic-embed-text"
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"maxTokens"` // num_predict
	NumCtx         int     `yaml:"numCtx"`    // context window size
}

// ChatConfig holds retrieval and gating parameters for the chat service.
type ChatConfig struct {
	TopK                   int     `yaml:"topK"`                   // documents retrieved per question
	MinRelevance           float64 `yaml:"minRelevance"`           // inclusion floor for search results
	HighRelevanceThreshold float64 `yaml:"highRelevanceThreshold"` // average relevance needed to inject context
	RateLimitPerSecond     float64 `yaml:"rateLimitPerSecond"`
	RateLimitBurst         int     `yaml:"rateLimitBurst"`
}

// IndexingConfig holds chunking defaults and the startup auto-indexing policy.
type IndexingConfig struct {
	ChunkSize        int    `yaml:"chunkSize"`
	ChunkOverlap     int    `yaml:"chunkOverlap"`
	DocsDir          string `yaml:"docsDir"` // directory with PDFs indexed at startup
	AutoIndex        bool   `yaml:"autoIndex"`
	WaitRetries      int    `yaml:"waitRetries"`      // attempts waiting for Ollama at startup
	WaitDelaySeconds int    `yaml:"waitDelaySeconds"` // delay between attempts
}

// Config is the root configuration for the service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Chat     ChatConfig     `yaml:"chat"`
	Indexing IndexingConfig `yaml:"indexing"`
}

// Load reads and parses the YAML configuration file at path, then fills in
// defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 5
	}
	if c.Postgres.ConnMaxLifetime == 0 {
		c.Postgres.ConnMaxLifetime = 3600
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.ChatModel == "" {
		c.Ollama.ChatModel = "qwen3:4b"
	}
	if c.Ollama.EmbeddingModel == "" {
		c.Ollama.EmbeddingModel = "nomic-embed-text"
	}
	if c.Ollama.TimeoutSeconds == 0 {
		c.Ollama.TimeoutSeconds = 120
	}
	if c.Ollama.Temperature == 0 {
		c.Ollama.Temperature = 0.5
	}
	if c.Ollama.MaxTokens == 0 {
		c.Ollama.MaxTokens = 1024
	}
	if c.Ollama.NumCtx == 0 {
		c.Ollama.NumCtx = 8192
	}
	if c.Chat.TopK == 0 {
		c.Chat.TopK = 3
	}
	if c.Chat.MinRelevance == 0 {
		c.Chat.MinRelevance = 0.3
	}
	if c.Chat.HighRelevanceThreshold == 0 {
		c.Chat.HighRelevanceThreshold = 0.6
	}
	if c.Chat.RateLimitPerSecond == 0 {
		c.Chat.RateLimitPerSecond = 1
	}
	if c.Chat.RateLimitBurst == 0 {
		c.Chat.RateLimitBurst = 5
	}
	if c.Indexing.ChunkSize == 0 {
		c.Indexing.ChunkSize = 1000
	}
	if c.Indexing.ChunkOverlap == 0 {
		c.Indexing.ChunkOverlap = 200
	}
	if c.Indexing.DocsDir == "" {
		c.Indexing.DocsDir = "docs/pdfs"
	}
	if c.Indexing.WaitRetries == 0 {
		c.Indexing.WaitRetries = 30
	}
	if c.Indexing.WaitDelaySeconds == 0 {
		c.Indexing.WaitDelaySeconds = 10
	}
}
