package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cultivar")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8008", cfg.ListenAddr)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)

	db := cfg.DB()
	assert.Equal(t, "postgres://localhost/cultivar", db.URL)
	assert.Equal(t, int32(10), db.MaxConns)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://file/cultivar\nLISTEN_ADDR=:9000\n"), 0o600))

	// set by the test so t.Setenv restores the original value afterwards
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7000")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/cultivar", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr, "environment wins over the file")

	os.Unsetenv("DATABASE_URL")
}

func TestValidate(t *testing.T) {
	base := Config{MaxConns: 4, MinConns: 1, LogFormat: "json"}
	assert.NoError(t, base.Validate())

	bad := base
	bad.MinConns = 5
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())

	bad = base
	bad.MaxConns = 0
	assert.Error(t, bad.Validate())
}
