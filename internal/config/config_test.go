package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFile_MissingYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 512, cfg.Classifier.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Classifier.Timeout)
}

func TestLoadFile_YAMLOverridesDefaults(t *testing.T) {
	p := writeFile(t, "whomadeit.yaml", `
server:
  addr: "127.0.0.1:9000"
  cors_origins: ["https://app.example.com"]
logging:
  format: console
llm:
  provider: anthropic
  model: claude-sonnet
classifier:
  requests_per_minute: 30
  timeout: 45s
`)
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 30, cfg.Classifier.RequestsPerMinute)
	assert.Equal(t, 45*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, 512, cfg.Classifier.MaxTokens)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	p := writeFile(t, "bad.yaml", "server: [unclosed")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestApplyEnv_WinsOverFile(t *testing.T) {
	p := writeFile(t, "whomadeit.yaml", "server:\n  addr: \":7000\"\nllm:\n  provider: gemini\n")
	t.Setenv("WHOMADEIT_ADDR", ":9999")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://a.example.com ,")
	t.Setenv("WHOMADEIT_LLM_PROVIDER", "mock")
	t.Setenv("WHOMADEIT_DB", "/tmp/w.db")

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	cfg.ApplyEnv()

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "https://a.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "/tmp/w.db", cfg.Database.Path)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	p := writeFile(t, ".env", "WHOMADEIT_TEST_A=from-file\nWHOMADEIT_TEST_B=from-file\n")
	t.Setenv("WHOMADEIT_TEST_A", "from-env")
	t.Setenv("WHOMADEIT_TEST_B", "")
	os.Unsetenv("WHOMADEIT_TEST_B")

	require.NoError(t, LoadDotEnv(p))
	assert.Equal(t, "from-env", os.Getenv("WHOMADEIT_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("WHOMADEIT_TEST_B"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, false},
		{"zero tokens", func(c *Config) { c.Classifier.MaxTokens = 0 }, false},
		{"negative rpm", func(c *Config) { c.Classifier.RequestsPerMinute = -1 }, false},
		{"negative timeout", func(c *Config) { c.Classifier.Timeout = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLLMConfig(t *testing.T) {
	t.Setenv("WHOMADEIT_LLM_MODEL", "")
	t.Setenv("WHOMADEIT_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg := Default()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Model = "claude-sonnet"

	lc := cfg.LLMConfig()
	assert.Equal(t, "anthropic", lc.Provider)
	assert.Equal(t, "claude-sonnet", lc.Anthropic.Model)
	assert.Equal(t, "sk-ant-test", lc.Anthropic.APIKey)
	assert.NoError(t, lc.Validate())
}

func TestClassifierConfig(t *testing.T) {
	cfg := Default()
	cfg.Classifier.RequestsPerMinute = 12
	cc := cfg.ClassifierConfig()
	assert.Equal(t, 512, cc.MaxTokens)
	assert.Equal(t, 12, cc.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, cc.Timeout)
}
