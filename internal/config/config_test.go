package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), perm))
	return path
}

func TestLoadWithFile_Defaults(t *testing.T) {
	cfg, err := LoadWithFile(writeConfig(t, "", 0o600))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 5, cfg.Agent.MaxToolRounds)
	assert.Equal(t, "vsl_knowledge", cfg.VectorStore.Collection)
	assert.Equal(t, 7*24*time.Hour, cfg.Checkpoint.TTL)
	assert.Equal(t, cfg.LLM.Model, cfg.LLM.LightModel,
		"light model falls back to the main model")
}

func TestLoadWithFile_YAMLValues(t *testing.T) {
	body := `
server:
  port: 9090
logging:
  level: debug
  format: console
llm:
  base_url: http://localhost:11434/v1
  model: qwen2.5
  light_model: qwen2.5:0.5b
retrieval:
  top_k: 3
  corpus_path: /data/corpus.json
checkpoint:
  addr: localhost:6379
mcp:
  servers:
    - name: tasks
      command: tasks-mcp
      args: ["--stdio"]
`
	cfg, err := LoadWithFile(writeConfig(t, body, 0o600))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "qwen2.5:0.5b", cfg.LLM.LightModel)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "/data/corpus.json", cfg.Retrieval.CorpusPath)
	assert.Equal(t, "localhost:6379", cfg.Checkpoint.Addr)
	require.Len(t, cfg.MCP.Servers, 1)
	assert.Equal(t, "tasks", cfg.MCP.Servers[0].Name)
	assert.Equal(t, []string{"--stdio"}, cfg.MCP.Servers[0].Args)
}

func TestLoadWithFile_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LLM_MODEL", "env-model")

	cfg, err := LoadWithFile(writeConfig(t, "server:\n  port: 9090\n", 0o600))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "environment beats file")
	assert.Equal(t, "env-model", cfg.LLM.Model)
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadWithFile_RejectsLoosePermissions(t *testing.T) {
	_, err := LoadWithFile(writeConfig(t, "", 0o644))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestLoadWithFile_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad port", "server:\n  port: 99999\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"nameless mcp server", "mcp:\n  servers:\n    - command: foo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithFile(writeConfig(t, tt.body, 0o600))
			require.Error(t, err)
		})
	}
}
