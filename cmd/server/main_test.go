package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/palchat-server/internal/config"
)

func TestConfigCommandPrintsResolvedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nsession_buffer: 8\n"), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "--config", path, "--log-level", "debug"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &cfg))
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 8, cfg.SessionBuffer)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestAddrFlagOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\n"), 0o600))

	cfg, resolved, err := loadConfig(nil, options{configPath: path, addr: ":7000"})
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, ":7000", cfg.Addr)
}
