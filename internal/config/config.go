package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/risk-warden/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	AI       AIConfig       `mapstructure:"ai"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Database DBConfig       `mapstructure:"database"`
	Logging  logger.Config  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port       string `mapstructure:"port"`
	MaxWorkers int    `mapstructure:"max_workers"`
	QueueSize  int    `mapstructure:"queue_size"`
}

type GitHubConfig struct {
	// Token is a personal access token, used by the CLI and whenever no App
	// installation is attached to an event.
	Token          string `mapstructure:"token"`
	AppID          int64  `mapstructure:"app_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	// ActingLogin overrides the identity lookup used by the merge-safety guard.
	ActingLogin string `mapstructure:"acting_login"`
	// MergeMethod is one of merge, squash or rebase.
	MergeMethod string `mapstructure:"merge_method"`
}

type AIConfig struct {
	LLMProvider      string `mapstructure:"llm_provider"`
	GeneratorModel   string `mapstructure:"generator_model"`
	EmbedderProvider string `mapstructure:"embedder_provider"`
	EmbedderModel    string `mapstructure:"embedder_model"`
	OllamaHost       string `mapstructure:"ollama_host"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	// QdrantHost enables the vector-backed audit search when set.
	QdrantHost string `mapstructure:"qdrant_host"`
}

type PipelineConfig struct {
	RetrievalEnabled bool          `mapstructure:"retrieval_enabled"`
	RetrievalLimit   int           `mapstructure:"retrieval_limit"`
	ChunkSize        int           `mapstructure:"chunk_size"`
	CorePatterns     []string      `mapstructure:"core_patterns"`
	PolicyPath       string        `mapstructure:"policy_path"`
	SearchTimeout    time.Duration `mapstructure:"search_timeout"`
	InferenceTimeout time.Duration `mapstructure:"inference_timeout"`
	ActionTimeout    time.Duration `mapstructure:"action_timeout"`
	PersistAttempts  int           `mapstructure:"persist_attempts"`
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Path            string        `mapstructure:"path"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.queue_size", 100)

	v.SetDefault("github.private_key_path", "keys/risk-warden.private-key.pem")
	v.SetDefault("github.merge_method", "squash")

	v.SetDefault("ai.llm_provider", "ollama")
	v.SetDefault("ai.generator_model", "gemma3:latest")
	v.SetDefault("ai.embedder_provider", "ollama")
	v.SetDefault("ai.embedder_model", "nomic-embed-text")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")

	v.SetDefault("pipeline.retrieval_enabled", true)
	v.SetDefault("pipeline.retrieval_limit", 5)
	v.SetDefault("pipeline.chunk_size", 6000)
	v.SetDefault("pipeline.core_patterns", []string{"auth", "core"})
	v.SetDefault("pipeline.search_timeout", 10*time.Second)
	v.SetDefault("pipeline.inference_timeout", 2*time.Minute)
	v.SetDefault("pipeline.action_timeout", 30*time.Second)
	v.SetDefault("pipeline.persist_attempts", 3)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "warden")
	v.SetDefault("database.database", "risk_warden")
	v.SetDefault("database.path", "risk-warden.db")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
}

// LoadConfig reads config.yaml (when present) and RW_-prefixed environment
// variables on top of the defaults, then validates the result. A nested key
// such as github.token maps to RW_GITHUB_TOKEN.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/risk-warden")

	v.SetEnvPrefix("RW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment")
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	switch c.GitHub.MergeMethod {
	case "merge", "squash", "rebase":
	default:
		return fmt.Errorf("unsupported merge method: %q", c.GitHub.MergeMethod)
	}
	if c.AI.LLMProvider == "gemini" && c.AI.GeminiAPIKey == "" {
		return errors.New("ai.gemini_api_key must be set for the gemini provider")
	}
	return nil
}

// Validate checks the pipeline bounds.
func (p *PipelineConfig) Validate() error {
	if p.ChunkSize <= 0 {
		return fmt.Errorf("pipeline.chunk_size must be positive, got %d", p.ChunkSize)
	}
	if p.RetrievalLimit < 0 || p.RetrievalLimit > 50 {
		return fmt.Errorf("pipeline.retrieval_limit must be within [0, 50], got %d", p.RetrievalLimit)
	}
	for name, d := range map[string]time.Duration{
		"search_timeout":    p.SearchTimeout,
		"inference_timeout": p.InferenceTimeout,
		"action_timeout":    p.ActionTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("pipeline.%s must be positive", name)
		}
	}
	if p.PersistAttempts < 1 {
		return fmt.Errorf("pipeline.persist_attempts must be at least 1, got %d", p.PersistAttempts)
	}
	return nil
}

// RequireApp reports whether GitHub App credentials are configured, as needed
// by the webhook server.
func (g *GitHubConfig) RequireApp() error {
	if g.AppID == 0 {
		return errors.New("github.app_id must be set")
	}
	if g.WebhookSecret == "" {
		return errors.New("github.webhook_secret must be set")
	}
	return nil
}
