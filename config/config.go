package config

import (
	"time"
)

// Config is the root application configuration
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Logging         LoggingConfig         `mapstructure:"logging"`
	Gemini          GeminiConfig          `mapstructure:"gemini"`
	OpenAI          OpenAIConfig          `mapstructure:"openai"`
	Embedding       EmbeddingConfig       `mapstructure:"embedding"`
	Index           IndexConfig           `mapstructure:"index"`
	MarketData      MarketDataConfig      `mapstructure:"market_data"`
	Social          SocialConfig          `mapstructure:"social"`
	Sentiment       SentimentConfig       `mapstructure:"sentiment"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Storage         StorageConfig         `mapstructure:"storage"`
	Recommendations RecommendationsConfig `mapstructure:"recommendations"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// GeminiConfig configures the text generator and the Gemini embedder
type GeminiConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float32       `mapstructure:"temperature"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig configures the OpenAI-compatible embedder
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig selects the embedding provider: tfidf, gemini or openai
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
}

// IndexConfig selects the similarity index backend: memory, pgvector or elasticsearch
type IndexConfig struct {
	Backend       string              `mapstructure:"backend"`
	BuildOnStart  bool                `mapstructure:"build_on_start"` // ignored for memory, which is always built
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// MarketDataConfig configures the market data and news provider
type MarketDataConfig struct {
	Provider string        `mapstructure:"provider"` // alphavantage, yahoo or mock
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SocialConfig configures the X (Twitter) recent search feed
type SocialConfig struct {
	BearerToken string        `mapstructure:"bearer_token"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SentimentConfig configures the hosted sentiment classifier
type SentimentConfig struct {
	APIToken string        `mapstructure:"api_token"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig configures where generated advice is archived
type StorageConfig struct {
	Type         string `mapstructure:"type"` // local or s3
	LocalPath    string `mapstructure:"local_path"`
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Region     string `mapstructure:"s3_region"`
	S3Endpoint   string `mapstructure:"s3_endpoint"` // S3-compatible endpoint such as MinIO
	AWSAccessKey string `mapstructure:"aws_access_key_id"`
	AWSSecretKey string `mapstructure:"aws_secret_access_key"`
}

type RecommendationsConfig struct {
	TopK    int `mapstructure:"top_k"`
	SearchK int `mapstructure:"search_k"`
}
