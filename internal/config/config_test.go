package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
day_boundary_hour = 4
postgres_db_name = "fitquest"

[production]
host = "localhost"
port = 9001
log_level = "debug"
day_boundary_hour = 4
postgres_db_name = "fitquest"
`

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0o600))

	cfg, err := Load("development", configPath)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, 4, cfg.DayBoundaryHour)
	assert.Equal(t, "development", cfg.Environment)

	cfg, err = Load("prod", configPath)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)

	_, err = Load("staging", configPath)
	assert.Error(t, err)

	_, err = Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
