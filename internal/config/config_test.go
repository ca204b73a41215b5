package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEEPSCAN_PROVIDER", "")
	t.Setenv("DEEPSCAN_MODEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, DriverNone, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Minute, cfg.AI.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  apiKeys:
    acme: key-1
ai:
  provider: Gemini
  model: gemini-2.5-flash
  timeout: 45s
log:
  level: debug
  format: console
storage:
  driver: postgres
  host: db
  port: 5432
  user: scan
  password: secret
  name: deepscan
`), 0o600))
	t.Setenv("DEEPSCAN_PROVIDER", "")
	t.Setenv("DEEPSCAN_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "key-1", cfg.Server.APIKeys["acme"])
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
	assert.Equal(t, "g-key", cfg.AI.APIKey)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60, cfg.Server.RateLimit, "unset keys keep their defaults")
	assert.Equal(t, "host=db port=5432 user=scan password=secret dbname=deepscan sslmode=disable", cfg.PostgresDSN())
}

func TestApplyEnv_Ollama(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(func(k string) string {
		return map[string]string{
			"DEEPSCAN_PROVIDER": "ollama",
			"OLLAMA_HOST":       "http://gpu-box:11434",
			"OPENAI_API_KEY":    "ignored",
		}[k]
	})
	assert.Equal(t, ProviderOllama, cfg.AI.Provider)
	assert.Equal(t, "http://gpu-box:11434", cfg.AI.BaseURL)
	assert.Empty(t, cfg.AI.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.AI.Provider = "claude"
	assert.ErrorContains(t, cfg.Validate(), "unknown ai provider")

	cfg = Default()
	cfg.Storage.Driver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "unknown storage driver")

	cfg = Default()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Storage = StorageConfig{Driver: DriverMySQL, Host: "localhost", Port: 3306, User: "root", Password: "pw", Name: "deepscan"}
	assert.Equal(t, "root:pw@tcp(localhost:3306)/deepscan?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestHTTPWriteTimeout(t *testing.T) {
	cfg := Default()
	assert.GreaterOrEqual(t, cfg.HTTPWriteTimeout(), 2*cfg.AI.Timeout)

	tests := []struct {
		name  string
		write time.Duration
		ai    time.Duration
		want  time.Duration
	}{
		{"raised to cover both stages", 3 * time.Minute, 2 * time.Minute, 4*time.Minute + 30*time.Second},
		{"configured value already enough", 10 * time.Minute, 2 * time.Minute, 10 * time.Minute},
		{"no generation timeout", 3 * time.Minute, 0, 3 * time.Minute},
		{"no write timeout", 0, 2 * time.Minute, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.WriteTimeout = tt.write
			cfg.AI.Timeout = tt.ai
			assert.Equal(t, tt.want, cfg.HTTPWriteTimeout())
		})
	}
}
