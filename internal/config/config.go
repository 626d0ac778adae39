// Package config loads plotline settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/plotline/pkg/layout"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file is not an error.
const DefaultPath = "plotline.yaml"

// Config is the root of plotline.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Generator GeneratorConfig `yaml:"generator"`
	Storage   StorageConfig   `yaml:"storage"`
	Layout    layout.Config   `yaml:"layout"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type GeneratorConfig struct {
	Provider  string        `yaml:"provider" validate:"required,oneof=openai anthropic gemini echo process"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey    string        `yaml:"api_key"`
	MaxTokens int           `yaml:"max_tokens" validate:"gte=0"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`

	// Response is the canned answer of the echo provider.
	Response string `yaml:"response"`
	// Command is the argv of the process provider, e.g. [ollama, run, llama3].
	Command []string `yaml:"command" validate:"required_if=Provider process"`
}

type StorageConfig struct {
	Driver string      `yaml:"driver" validate:"required,oneof=memory file redis"`
	Path   string      `yaml:"path" validate:"required_if=Driver file"`
	Redis  RedisConfig `yaml:"redis"`

	// EncryptionKey is a base64 AES-256 key; when set flows are sealed at rest.
	EncryptionKey string `yaml:"encryption_key" validate:"omitempty,base64"`
	// Redact lists regular expressions of node data keys masked before saving.
	Redact []string `yaml:"redact"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
	Lock     bool          `yaml:"lock"`
}

type SynthesisConfig struct {
	StrictEdges bool `yaml:"strict_edges"`
	AutoLayout  bool `yaml:"auto_layout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:    ServerConfig{Addr: ":8080"},
		Log:       LogConfig{Level: "info", Format: "text"},
		Generator: GeneratorConfig{Provider: "openai"},
		Storage: StorageConfig{
			Driver: "memory",
			Path:   ".plotline/flows",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "plotline:flow:"},
		},
		Layout: layout.DefaultConfig(),
	}
}

// Load reads path over Default, applies the environment and validates.
// An empty path reads DefaultPath if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PLOTLINE_* variables. A provider API key
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY) fills generator.api_key
// when none is configured.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PLOTLINE_ADDR", &c.Server.Addr)
	str("PLOTLINE_LOG_LEVEL", &c.Log.Level)
	str("PLOTLINE_LOG_FORMAT", &c.Log.Format)
	str("PLOTLINE_PROVIDER", &c.Generator.Provider)
	str("PLOTLINE_MODEL", &c.Generator.Model)
	str("PLOTLINE_BASE_URL", &c.Generator.BaseURL)
	str("PLOTLINE_API_KEY", &c.Generator.APIKey)
	str("PLOTLINE_STORAGE", &c.Storage.Driver)
	str("PLOTLINE_STORAGE_PATH", &c.Storage.Path)
	str("PLOTLINE_REDIS_ADDR", &c.Storage.Redis.Addr)
	str("PLOTLINE_REDIS_PASSWORD", &c.Storage.Redis.Password)
	str("PLOTLINE_ENCRYPTION_KEY", &c.Storage.EncryptionKey)

	if v, ok := lookup("PLOTLINE_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLOTLINE_REDIS_DB: %w", err)
		}
		c.Storage.Redis.DB = db
	}
	if v, ok := lookup("PLOTLINE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PLOTLINE_TIMEOUT: %w", err)
		}
		c.Generator.Timeout = d
	}
	if v, ok := lookup("PLOTLINE_STRICT_EDGES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PLOTLINE_STRICT_EDGES: %w", err)
		}
		c.Synthesis.StrictEdges = b
	}

	if c.Generator.APIKey == "" {
		if key, ok := lookup(providerKeyEnv(c.Generator.Provider)); ok {
			c.Generator.APIKey = key
		}
	}
	return nil
}

func providerKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GOOGLE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return layout.IsFinite(fl.Field().Float())
	})
	return v
}

// Validate checks the struct tags and reports the first failure by its yaml path.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (got %v)", fieldPath(e.Namespace()), e.Tag(), e.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fieldPath turns "Config.Storage.Redis.DB" into "storage.redis.db".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}
