package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_RepositoryDefault(t *testing.T) {
	cfg, err := LoadConfig("../../configs/config.yaml")
	require.NoError(t, err)

	require.Len(t, cfg.Writers, 5)
	assert.Equal(t, "text", cfg.Writers[0].Type)
	assert.True(t, cfg.Writers[0].Enabled)
	assert.Equal(t, "clickhouse", cfg.Writers[3].Type)
	assert.False(t, cfg.Writers[3].Enabled)
	assert.False(t, cfg.API.Enabled)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
writers:
  - type: chart
    enabled: true
    chart:
      root_path: /tmp/charts
      width: 800
api:
  enabled: true
  listen_addr: "127.0.0.1:9090"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Writers, 1)
	chart := cfg.Writers[0].Chart
	assert.Equal(t, "/tmp/charts", chart.RootPath)
	assert.Equal(t, 800, chart.Width)
	assert.Equal(t, defaultChartHeight, chart.Height)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1:9090", cfg.API.ListenAddr)
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[[writers]]
type = "nats"
enabled = true

[writers.nats]
url = "nats://localhost:4222"

[[writers]]
type = "gob"
enabled = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Writers, 2)
	assert.Equal(t, "nats://localhost:4222", cfg.Writers[0].NATS.URL)
	assert.Equal(t, defaultNATSSubject, cfg.Writers[0].NATS.Subject)
	assert.Equal(t, defaultRootPath, cfg.Writers[1].Gob.RootPath)
	assert.Equal(t, defaultListenAddr, cfg.API.ListenAddr)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed yaml", "bad.yaml", "writers: [unclosed"},
		{"malformed toml", "bad.toml", "writers = ["},
		{"missing type", "c.yaml", "writers:\n  - enabled: true\n"},
		{"clickhouse without host", "c.yaml", "writers:\n  - type: clickhouse\n    enabled: true\n"},
		{"nats without url", "c.yaml", "writers:\n  - type: nats\n    enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_DisabledWritersNeedNoConnection(t *testing.T) {
	cfg := &Config{Writers: []WriterDef{
		{Type: "clickhouse"},
		{Type: "nats"},
	}}
	assert.NoError(t, cfg.Validate())
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Len(t, cfg.Writers, 1)
	assert.Equal(t, "text", cfg.Writers[0].Type)
	assert.True(t, cfg.Writers[0].Enabled)
	assert.Equal(t, defaultRootPath, cfg.Writers[0].Text.RootPath)
	assert.NoError(t, cfg.Validate())
}
