package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 200.0, cfg.Layout.XSpacing)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plotline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
generator:
  provider: anthropic
  timeout: 15s
storage:
  driver: redis
  redis:
    addr: redis:6379
    ttl: 24h
    lock: true
layout:
  x_spacing: 150
  y_spacing: 100
synthesis:
  strict_edges: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "anthropic", cfg.Generator.Provider)
	assert.Equal(t, 15*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Storage.Redis.TTL)
	assert.True(t, cfg.Storage.Redis.Lock)
	assert.Equal(t, "plotline:flow:", cfg.Storage.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 150.0, cfg.Layout.XSpacing)
	assert.Equal(t, 400.0, cfg.Layout.OriginX)
	assert.True(t, cfg.Synthesis.StrictEdges)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "Bad YAML", content: "server: [", want: "failed to parse"},
		{name: "Unknown Provider", content: "generator:\n  provider: llama", want: "generator.provider"},
		{name: "Unknown Driver", content: "storage:\n  driver: s3", want: "storage.driver"},
		{name: "Negative Spacing", content: "layout:\n  x_spacing: -5", want: "layout.xspacing"},
		{name: "Infinite Origin", content: "layout:\n  origin_x: .inf", want: "layout.originx"},
		{name: "NaN Top Margin", content: "layout:\n  top_margin: .nan", want: "layout.topmargin"},
		{name: "NaN Spacing", content: "layout:\n  y_spacing: .nan", want: "layout.yspacing"},
		{name: "Bad Log Format", content: "log:\n  format: xml", want: "log.format"},
		{name: "Process Without Command", content: "generator:\n  provider: process", want: "generator.command"},
		{name: "Bad Encryption Key", content: "storage:\n  encryption_key: '***'", want: "storage.encryptionkey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plotline.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"PLOTLINE_ADDR":         ":7000",
		"PLOTLINE_PROVIDER":     "gemini",
		"PLOTLINE_REDIS_DB":     "3",
		"PLOTLINE_TIMEOUT":      "2s",
		"PLOTLINE_STRICT_EDGES": "true",
		"GOOGLE_API_KEY":        "g-key",
		"OPENAI_API_KEY":        "o-key",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.Generator.Provider)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.Equal(t, 2*time.Second, cfg.Generator.Timeout)
	assert.True(t, cfg.Synthesis.StrictEdges)
	assert.Equal(t, "g-key", cfg.Generator.APIKey, "provider key follows the provider")
}

func TestApplyEnv_ExplicitKeyWins(t *testing.T) {
	cfg := Default()
	cfg.Generator.APIKey = "from-file"
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{"OPENAI_API_KEY": "from-env"})))
	assert.Equal(t, "from-file", cfg.Generator.APIKey)
}

func TestApplyEnv_BadValues(t *testing.T) {
	for key, value := range map[string]string{
		"PLOTLINE_REDIS_DB":     "three",
		"PLOTLINE_TIMEOUT":      "soon",
		"PLOTLINE_STRICT_EDGES": "maybe",
	} {
		cfg := Default()
		err := cfg.ApplyEnv(env(map[string]string{key: value}))
		assert.ErrorContains(t, err, key)
	}
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "storage.redis.db", fieldPath("Config.Storage.Redis.DB"))
	assert.Equal(t, "x", fieldPath("X"))
}
