package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Qdrant         QdrantConfig         `mapstructure:"qdrant"`
	OpenAI         OpenAIConfig         `mapstructure:"openai"`
	PatientBackend PatientBackendConfig `mapstructure:"patient_backend"`
	Images         ImagesConfig         `mapstructure:"images"`
	Redis          RedisConfig          `mapstructure:"redis"`
}

type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
	TimeoutSec int    `mapstructure:"timeout_seconds"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ImageModel     string `mapstructure:"image_model"`
	EnableOverlay  bool   `mapstructure:"enable_overlay"`
}

type PatientBackendConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	TimeoutSec int    `mapstructure:"timeout_seconds"`
}

type ImagesConfig struct {
	CacheTTLMinutes   int    `mapstructure:"cache_ttl_minutes"`
	AttemptTimeoutSec int    `mapstructure:"attempt_timeout_seconds"`
	PhotoBaseURL      string `mapstructure:"photo_base_url"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func (q QdrantConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSec) * time.Second
}

func (p PatientBackendConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

func (i ImagesConfig) CacheTTL() time.Duration {
	return time.Duration(i.CacheTTLMinutes) * time.Minute
}

func (i ImagesConfig) AttemptTimeout() time.Duration {
	return time.Duration(i.AttemptTimeoutSec) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Env-only deployments carry no config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Qdrant.URL == "" {
		return nil, fmt.Errorf("qdrant.url is required")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit_rps", 50)
	viper.SetDefault("server.rate_limit_burst", 100)

	viper.SetDefault("qdrant.collection", "pregnancy_weeks")
	viper.SetDefault("qdrant.timeout_seconds", 60)

	viper.SetDefault("openai.chat_model", "gpt-4o-mini")
	viper.SetDefault("openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("openai.image_model", "dall-e-3")

	viper.SetDefault("patient_backend.url", "http://localhost:3000")
	viper.SetDefault("patient_backend.timeout_seconds", 30)

	viper.SetDefault("images.cache_ttl_minutes", 1440)
	viper.SetDefault("images.attempt_timeout_seconds", 45)
	viper.SetDefault("images.photo_base_url", "https://images.pregnancy-app.dev/produce")
}
