package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "all-minilm", cfg.Embedding.Model)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "motif.yaml", `
data_root: /corpus
manifest: /corpus/manifest.csv
scan:
  workers: 6
  file_timeout: 2s
embedding:
  model: nomic-embed-text
  requests_per_second: 4.5
postgres:
  dsn: postgres://localhost/motif
server:
  addr: ":9090"
  allowed_origins: ["https://example.org"]
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/corpus", cfg.DataRoot)
	assert.Equal(t, 6, cfg.Scan.Workers)
	assert.Equal(t, 2*time.Second, cfg.Scan.FileTimeout)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 4.5, cfg.Embedding.RequestsPerSecond)
	assert.Equal(t, "postgres://localhost/motif", cfg.Postgres.DSN)
	assert.Equal(t, "music_features", cfg.Postgres.Table, "unset keys keep defaults")
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.AllowedOrigins)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "motif.yaml", "data_rot: /typo\n")
	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "motif.yaml", "data_root: /from-file\nlog_level: warn\n")
	t.Setenv("MOTIF_DATA_ROOT", "/from-env")
	t.Setenv("MOTIF_SCAN_WORKERS", "3")
	t.Setenv("MOTIF_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.DataRoot)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "MOTIF_EMBEDDING_MODEL=from-dotenv\nMOTIF_DB=/tmp/songs.db\n")
	t.Setenv("MOTIF_DB", "/var/lib/motif")
	t.Cleanup(func() { os.Unsetenv("MOTIF_EMBEDDING_MODEL") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Embedding.Model)
	assert.Equal(t, "/var/lib/motif", cfg.Database, "process environment wins over .env")
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestApplyEnv_Invalid(t *testing.T) {
	env := map[string]string{
		"MOTIF_SCAN_WORKERS":      "many",
		"MOTIF_SCAN_FILE_TIMEOUT": "soon",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "MOTIF_SCAN_WORKERS")
	assert.Contains(t, err.Error(), "MOTIF_SCAN_FILE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Scan.Workers = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Default()
	cfg.DataRoot = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://embed:8000"
	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://embed:8000/v1", aiCfg.EmbeddingHost)
}
