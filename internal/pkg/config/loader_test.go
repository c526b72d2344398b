package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
streams:
  - name: alpha
    endpoint: wss://alpha.example.com/ws
    access_token: secret-token
  - name: beta
    endpoint: ws://127.0.0.1:8900
max_slots: 100
stop_at_max: true
commitment: confirmed
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Streams, 2)
	require.Equal(t, "alpha", cfg.Streams[0].Name)
	require.Equal(t, "wss://alpha.example.com/ws", cfg.Streams[0].Endpoint)
	require.Equal(t, "secret-token", cfg.Streams[0].AccessToken)
	require.Empty(t, cfg.Streams[1].AccessToken)

	require.Equal(t, 100, cfg.MaxSlots)
	require.True(t, cfg.StopAtMax)
	require.Equal(t, "confirmed", cfg.Commitment)

	// Defaults fill everything the file leaves out.
	require.Equal(t, 10, cfg.WarmupSlots)
	require.Equal(t, 30, cfg.ReportInterval)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.MetricsAddr)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
streams:
  - name: solo
    endpoint: wss://solo.example.com
`))
	require.NoError(t, err)

	require.Equal(t, 360, cfg.MaxSlots)
	require.False(t, cfg.StopAtMax)
	require.Equal(t, "processed", cfg.Commitment)
	require.Equal(t, 10, cfg.WarmupSlots)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SLOTRACE_MAX_SLOTS", "42")
	t.Setenv("SLOTRACE_COMMITMENT", "finalized")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.Equal(t, 42, cfg.MaxSlots)
	require.Equal(t, "finalized", cfg.Commitment)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEmptyStreams(t *testing.T) {
	_, err := Load(writeConfig(t, `
max_slots: 100
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no streams configured")
}

func TestLoadInvalidEndpoint(t *testing.T) {
	_, err := Load(writeConfig(t, `
streams:
  - name: bad
    endpoint: https://not-a-websocket.example.com
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ws:// or wss://")
}

func TestLoadInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, `
streams:
  - name: alpha
    endpoint: wss://alpha.example.com
max_slots: 0
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_slots")

	_, err = Load(writeConfig(t, `
streams:
  - name: ""
    endpoint: wss://alpha.example.com
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "name must not be empty")
}
