// Package config assembles the configuration of every component from
// defaults, an optional YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/abhisek/wikiquiz/internal/quizcache"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/store"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Log       LogConfig               `yaml:"log"`
	Database  store.Config            `yaml:"database"`
	LLM       llm.Config              `yaml:"llm"`
	Filters   quizgen.FilterConfig    `yaml:"filters"`
	Generator quizgen.GeneratorConfig `yaml:"generator"`
	Cache     quizcache.Config        `yaml:"cache"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// DefaultLang is used when a request does not name a language.
	DefaultLang string `yaml:"default_lang"`

	// AllowedOrigins lists the CORS origins. "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			DefaultLang:    "cs",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatConsole,
		},
		Database: store.Config{
			Dialect: store.DialectSQLite,
		},
		LLM:       llm.DefaultConfig(),
		Filters:   quizgen.DefaultFilterConfig(),
		Generator: quizgen.DefaultGeneratorConfig(),
		Cache:     quizcache.DefaultConfig(),
	}
}

// Load reads the configuration. An empty path skips the file. Values are
// layered as defaults, then the file, then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		cfg, err = Parse(data, cfg)
		if err != nil {
			return Config{}, err
		}
	}

	ApplyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a single YAML document on top of base. Unknown keys are
// rejected. Maps such as filters.meta_fragments are merged per key.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with WIKIQUIZ_* environment variables and the
// provider settings read by llm.ApplyEnv.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Database.Dialect, "WIKIQUIZ_DB_DIALECT")
	setString(&cfg.Database.DSN, "WIKIQUIZ_DB_DSN")
	setString(&cfg.Server.Addr, "WIKIQUIZ_ADDR")
	setString(&cfg.Server.DefaultLang, "WIKIQUIZ_DEFAULT_LANG")
	setString(&cfg.Log.Level, "WIKIQUIZ_LOG_LEVEL")
	setString(&cfg.Log.Format, "WIKIQUIZ_LOG_FORMAT")

	if v := os.Getenv("WIKIQUIZ_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("WIKIQUIZ_STRATEGY"); v != "" {
		cfg.Cache.Strategy = quizcache.Strategy(v)
	}

	llm.ApplyEnv(&cfg.LLM)
}

// Validate checks every section. Provider credentials are not checked here;
// they are only required by commands that build providers.
func (c Config) Validate() error {
	if c.Server.DefaultLang == "" {
		return fmt.Errorf("server default_lang is required")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if len(c.LLM.Providers) == 0 {
		return fmt.Errorf("llm: at least one provider is required")
	}
	if err := c.Filters.Validate(); err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
