// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: trip-test
camunda:
  broker_address: localhost:26500
workers:
  generate-trip-plan:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "trip-test", cfg.App.Name)
	assert.Equal(t, 1, cfg.Generation.Concurrency)
	assert.Equal(t, 25000, cfg.Generation.PreviewTimeout)
	assert.Equal(t, 90000, cfg.Generation.FullTimeout)
	assert.Equal(t, "genai", cfg.APIs.GenAI.Provider)
	assert.Equal(t, "ITINWORKERS", cfg.Links.PartnerID)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "trip-plans", cfg.Database.Elasticsearch.Index)

	w := cfg.Workers["generate-trip-plan"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 120000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.NoError(t, ValidateForWorkers(cfg))
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_GENAI_URL", "http://llm.internal:9000")
	path := writeConfig(t, `
apis:
  genai:
    base_url: ${TEST_GENAI_URL}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://llm.internal:9000", cfg.APIs.GenAI.BaseURL)
}

func TestLoadFromFile_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("GENAI_API_KEY", "secret-key")
	path := writeConfig(t, "app:\n  name: x\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.APIs.GenAI.APIKey)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "apis:\n  genai:\n    provider: bard\n"},
		{"preview longer than full", "generation:\n  preview_timeout: 100000\n  full_timeout: 5000\n"},
		{"tracing without endpoint", "tracing:\n  enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateForWorkers(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	assert.Error(t, ValidateForWorkers(cfg))

	cfg.Camunda.BrokerAddress = "zeebe:26500"
	assert.NoError(t, ValidateForWorkers(cfg))

	cfg.Database.Postgres.Host = "db"
	cfg.Database.Postgres.User = ""
	assert.Error(t, ValidateForWorkers(cfg))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"advise-trip-booking": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "advise-trip-booking"))
	assert.True(t, IsWorkerEnabled(cfg, "compute-trip-budget"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "advise-trip-booking").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "compute-trip-budget").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "trips", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=trips sslmode=disable", p.GetDSN())
	assert.True(t, p.Enabled())
	assert.False(t, PostgresConfig{}.Enabled())
}
