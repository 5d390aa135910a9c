package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingPathReturnsNil(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestLoadFile_EmptyPathReturnsNil(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestLoadFile_ParsesNestedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retrievalcore.yaml")
	yamlContent := `
topic: "Widget Launch"
recencyHours: 48
retrieval:
  minAccepted: 3
  maxAttempts: 10
websearch:
  enabled: true
  key: "abc123"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "Widget Launch", cfg.Topic)
	require.Equal(t, 48.0, cfg.RecencyHours)
	require.Equal(t, 3, cfg.Retrieval.MinAccepted)
	require.Equal(t, 10, cfg.Retrieval.MaxAttempts)
	require.True(t, cfg.WebSearch.Enabled)
	require.Equal(t, "abc123", cfg.WebSearch.APIKey)
}

func TestLoadFile_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topic: [unterminated"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}
