package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	STT      STTConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type STTConfig struct {
	Backend       string // "local" or "openai"
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string // default: "whisper-1"
	LocalBaseURL  string // default: "http://localhost:8178"
	Language      string // default: "en"
	BeamSize      int
}

type LLMConfig struct {
	Provider     string // "openai" (covers Ollama/LM Studio via base URL) or "anthropic"
	OpenAIKey    string
	BaseURL      string // OpenAI-compatible endpoint, e.g. "http://localhost:11434/v1"
	AnthropicKey string
	Model        string
	Temperature  float64
	MaxTokens    int
}

type PipelineConfig struct {
	PromptPath string
	CacheTTL   time.Duration // transcript cache; 0 disables caching
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	beamSize, err := getEnvInt("STT_BEAM_SIZE", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid STT_BEAM_SIZE: %w", err)
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
	}

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 0.3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	cacheTTL, err := getEnvInt("TRANSCRIPT_CACHE_TTL", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCRIPT_CACHE_TTL: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "local"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			Model:         getEnv("WHISPER_MODEL", "whisper-1"),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
			Language:      getEnv("STT_LANGUAGE", "en"),
			BeamSize:      beamSize,
		},
		LLM: LLMConfig{
			Provider:     getEnv("LLM_PROVIDER", "openai"),
			OpenAIKey:    getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "ollama")),
			BaseURL:      getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:        getEnv("LLM_MODEL", "gemma3:4b"),
			Temperature:  temperature,
			MaxTokens:    maxTokens,
		},
		Pipeline: PipelineConfig{
			PromptPath: getEnv("PROMPT_PATH", "prompts/system_prompt.txt"),
			CacheTTL:   time.Duration(cacheTTL) * time.Second,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	switch c.STT.Backend {
	case "local", "openai":
	default:
		return fmt.Errorf("unknown STT_BACKEND %q (want \"local\" or \"openai\")", c.STT.Backend)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want \"openai\" or \"anthropic\")", c.LLM.Provider)
	}
	if c.LLM.Provider == "anthropic" && c.LLM.AnthropicKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
