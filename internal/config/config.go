// Package config содержит логику чтения конфигурации партнёрского портала.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации партнёрского портала.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel string `env:"OPENAI_MODEL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envAuthSecret := cfg.AuthSecret
	envOpenAIKey := cfg.OpenAIKey
	envOpenAIModel := cfg.OpenAIModel

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for session cookies")
	flag.StringVar(&cfg.OpenAIKey, "k", "", "OpenAI API key (empty enables canned assistant replies)")
	flag.StringVar(&cfg.OpenAIModel, "m", "", "OpenAI model name")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envOpenAIKey != "" {
		cfg.OpenAIKey = envOpenAIKey
	}
	if envOpenAIModel != "" {
		cfg.OpenAIModel = envOpenAIModel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
