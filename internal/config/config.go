// Package config loads daemon configuration: defaults, overlaid by an
// optional YAML file, overlaid by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexcrawl/internal/gen"
	"github.com/talgya/hexcrawl/internal/travel"
)

// Config is the full daemon configuration.
type Config struct {
	Port     int    `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	Seed      int64 `yaml:"seed"`       // 0 = random
	MapRadius int   `yaml:"map_radius"` // 0 = unbounded

	Travel travel.Config `yaml:"travel"`

	Generation struct {
		Workers        int  `yaml:"workers"`
		Retries        uint `yaml:"retries"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"generation"`

	Ollama struct {
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ollama"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Port = 8080
	c.DBPath = "data/hexcrawl.db"
	c.LogLevel = "info"
	c.Seed = 0
	c.MapRadius = 0
	c.Travel = travel.DefaultConfig()

	g := gen.DefaultConfig()
	c.Generation.Workers = g.Workers
	c.Generation.Retries = g.Retries
	c.Generation.TimeoutSeconds = int(g.Timeout / time.Second)

	o := gen.DefaultOllamaConfig()
	c.Ollama.BaseURL = o.BaseURL
	c.Ollama.Model = o.Model
	c.Ollama.TimeoutSeconds = int(o.Timeout / time.Second)
	return c
}

// Load builds the configuration from the given YAML file (skipped when
// path is empty or missing) and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HEXCRAWL_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("HEXCRAWL_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("HEXCRAWL_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := os.Getenv("HEXCRAWL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
}

// GenConfig converts the generation section.
func (c Config) GenConfig() gen.Config {
	return gen.Config{
		Workers: c.Generation.Workers,
		Retries: c.Generation.Retries,
		Timeout: time.Duration(c.Generation.TimeoutSeconds) * time.Second,
	}
}

// OllamaConfig converts the ollama section.
func (c Config) OllamaConfig() gen.OllamaConfig {
	return gen.OllamaConfig{
		BaseURL: c.Ollama.BaseURL,
		Model:   c.Ollama.Model,
		Timeout: time.Duration(c.Ollama.TimeoutSeconds) * time.Second,
	}
}
