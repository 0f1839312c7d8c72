package providers

import (
	"os"
	"path/filepath"
	"scoutd/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
webServer:
  host: 127.0.0.1
  port: 8080
store:
  driver: memory
persistence:
  enabled: true
  filePath: /tmp/scoutd.snap
  saveInterval: 1m
logger:
  level: info
  mode: 0644
  dir: /tmp
cache:
  enabled: true
  size: 16
metrics:
  enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewConfigProvider_ReadsYAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, testConfigYAML)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", conf.WebServer.Host)
	assert.Equal(t, 8080, conf.WebServer.Port)
	assert.Equal(t, "/api", conf.WebServer.BasePath)
	assert.Equal(t, "memory", conf.Store.Driver)
	assert.Equal(t, time.Minute, conf.Persistence.SaveInterval)
	assert.Equal(t, "America/Los_Angeles", conf.Scouting.Timezone)
	assert.Equal(t, 5, conf.Scouting.ClaimMaxAttempts)
	assert.Equal(t, 5*time.Second, conf.Cache.TTL)
	assert.True(t, conf.Cache.Enabled)
	assert.True(t, conf.Metrics.Enabled)
	assert.True(t, conf.Debug)
	assert.Equal(t, path, conf.Path)
}

func TestNewConfigProvider_EnvOverrides(t *testing.T) {
	path := writeConfig(t, testConfigYAML)
	t.Setenv("SCOUTD_PORT", "9090")
	t.Setenv("SCOUTD_LOG_LEVEL", "debug")
	t.Setenv("SCOUTD_STORE_DRIVER", "sqlite")
	t.Setenv("SCOUTD_SQLITE_PATH", "/tmp/scoutd.db")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, 9090, conf.WebServer.Port)
	assert.Equal(t, "debug", conf.Logger.Level)
	assert.Equal(t, "sqlite", conf.Store.Driver)
	assert.Equal(t, "/tmp/scoutd.db", conf.Store.SQLitePath)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "webServer:\n  host: 127.0.0.1\nlogger:\n  level: info\n  mode: 0644\n  dir: /tmp\n")

	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err, "port is required")
}
