package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cozy_nook/internal/logger"
	"cozy_nook/internal/repository"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfig(t, `
port: "9090"
storage:
  driver: sqlite
auth:
  token_ttl: 2h
`)
	t.Setenv("STORAGE_DRIVER", "memory")

	require.NoError(t, loadConfig(path))

	assert.Equal(t, "9090", viper.GetString("port"))
	assert.Equal(t, "memory", viper.GetString("storage.driver"))
	assert.Equal(t, 2*time.Hour, viper.GetDuration("auth.token_ttl"))
	assert.Equal(t, "info", viper.GetString("log.level"), "default applies when the file is silent")
}

func TestLoadConfig_MissingDefaultFileIsFine(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// run from a directory without configs/
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, loadConfig(""))
	assert.Equal(t, "sqlite", viper.GetString("storage.driver"))
}

func TestOpenKV(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	log := logger.Nop()

	viper.Set("storage.driver", "memory")
	kv, closeKV, err := openKV(nil, log)
	require.NoError(t, err)
	assert.Nil(t, closeKV)
	assert.IsType(t, &repository.KVMemory{}, kv)

	viper.Set("storage.driver", "sqlite")
	kv, _, err = openKV(nil, log)
	require.NoError(t, err)
	assert.IsType(t, &repository.KVSQLite{}, kv)

	viper.Set("storage.driver", "etcd")
	_, _, err = openKV(nil, log)
	assert.ErrorContains(t, err, "unknown storage.driver")
}
