package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DATABASE_URL", "LLM_TIMEOUT_SECONDS", "CRITIQUE_MAX_AGE", "CRITIQUE_BATCH_CONCURRENCY", "LLM_DEFAULT_PROVIDER"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 90*time.Second, cfg.LLMTimeout)
	require.Zero(t, cfg.CritiqueMaxAge)
	require.Equal(t, 3, cfg.CritiqueBatchConcurrency)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://localhost/novel")
	t.Setenv("LLM_DEFAULT_PROVIDER", "DeepSeek")
	t.Setenv("CRITIQUE_MAX_AGE", "72")
	t.Setenv("LLM_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()
	require.Equal(t, "production", cfg.Env)
	require.Equal(t, "deepseek", cfg.LLMDefaultProvider)
	require.Equal(t, 72*time.Hour, cfg.CritiqueMaxAge)
	require.Equal(t, 90*time.Second, cfg.LLMTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Config{
		Port:                     "8080",
		Env:                      "dev",
		LLMTimeout:               time.Minute,
		CritiqueBatchConcurrency: 3,
		RateLimitBurst:           1,
	}
	require.NoError(t, base.Validate())

	prod := base
	prod.Env = "production"
	require.Error(t, prod.Validate())

	busy := base
	busy.CritiqueBatchConcurrency = 0
	require.Error(t, busy.Validate())

	badURL := base
	badURL.OpenAIBaseURL = "not a url"
	require.Error(t, badURL.Validate())
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOVEL_TEST_A=from-file\nNOVEL_TEST_B=\"quoted\"\n"), 0o600))
	t.Setenv("NOVEL_TEST_A", "from-env")
	t.Setenv("NOVEL_TEST_B", "")
	require.NoError(t, os.Unsetenv("NOVEL_TEST_B"))

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))
	require.Equal(t, "from-env", os.Getenv("NOVEL_TEST_A"))
	require.Equal(t, "quoted", os.Getenv("NOVEL_TEST_B"))
}
