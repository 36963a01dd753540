package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 3*time.Second, c.Timeout)
	require.Equal(t, time.Second, c.Interval)
	require.Equal(t, "info", c.LogLevel)
	require.Equal(t, "memstore", c.Driver)
	require.Equal(t, "tcp://127.0.0.1:6379", c.Redis)
	require.Equal(t, 1, c.Workers)
	require.Equal(t, 3*time.Second, c.ReverseDelay)
	require.Equal(t, 7*time.Second, c.TranspositionDelay)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alena.yaml")
	data := "driver: leveldb\ndbpath: /tmp/alena\nworkers: 2\ntimeout: 500ms\nreverse_delay: 0s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "leveldb", c.Driver)
	require.Equal(t, "/tmp/alena", c.DBPath)
	require.Equal(t, 2, c.Workers)
	require.Equal(t, 500*time.Millisecond, c.Timeout)
	require.Equal(t, time.Duration(0), c.ReverseDelay)
	require.Equal(t, 7*time.Second, c.TranspositionDelay)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ALENA_DRIVER", "redis")
	t.Setenv("ALENA_INTERVAL", "250ms")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "redis", c.Driver)
	require.Equal(t, 250*time.Millisecond, c.Interval)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("ALENA_DRIVER", "sqlite")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	c.Workers = 0
	require.Error(t, c.Validate())

	c = Default()
	c.Timeout = 0
	require.Error(t, c.Validate())
}
