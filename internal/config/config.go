package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Refund    RefundConfig    `mapstructure:"refund"`
	Router    RouterConfig    `mapstructure:"router"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
	// VectorIndex is the Atlas search index name used for
	// nearest-neighbor product queries.
	VectorIndex string `mapstructure:"vector_index"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

type RetrievalConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
	// FallbackOnEmpty switches to the brute-force cosine scan when the
	// vector index is available but returns zero results. Index
	// unavailability always triggers the fallback regardless.
	FallbackOnEmpty bool `mapstructure:"fallback_on_empty"`
}

type RefundConfig struct {
	ReturnWindow time.Duration `mapstructure:"return_window"`
}

type RouterConfig struct {
	ContextWindowTurns int           `mapstructure:"context_window_turns"`
	MaxAttempts        int           `mapstructure:"max_attempts"`
	RetryBaseDelay     time.Duration `mapstructure:"retry_base_delay"`
	CallTimeout        time.Duration `mapstructure:"call_timeout"`
}

type MemoryConfig struct {
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(configPath); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "supportdesk")
	v.SetDefault("mongo.timeout", "10s")
	v.SetDefault("mongo.vector_index", "product_embedding_index")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// LLM
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.embedding_model", "text-embedding-004")

	// Retrieval
	v.SetDefault("retrieval.default_limit", 5)
	v.SetDefault("retrieval.max_limit", 25)
	v.SetDefault("retrieval.fallback_on_empty", true)

	// Refund
	v.SetDefault("refund.return_window", "720h") // 30 days

	// Router
	v.SetDefault("router.context_window_turns", 10)
	v.SetDefault("router.max_attempts", 3)
	v.SetDefault("router.retry_base_delay", "200ms")
	v.SetDefault("router.call_timeout", "30s")

	// Memory worker
	v.SetDefault("memory.queue_size", 128)
	v.SetDefault("memory.timeout", "20s")

	// Rate limiting
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")

	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.gemini.model", "GEMINI_MODEL")
	v.BindEnv("llm.gemini.embedding_model", "GEMINI_EMBEDDING_MODEL")
}
