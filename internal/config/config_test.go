package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 20*time.Second, cfg.IndexCacheTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "yatube.db", cfg.Database.DSN())
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "local", cfg.Media.Backend)
	assert.Equal(t, "/media/", cfg.Media.URL)
	assert.NotEmpty(t, cfg.SecretKey)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestProductionRequiresSecret(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{"ENVIRONMENT": "production"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")

	cfg, err := fromViper(newViper(map[string]any{"ENVIRONMENT": "production", "SECRET_KEY": "s3cret"}))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"DATABASE_DRIVER": "postgres",
		"DB_HOST":         "db",
		"DB_PASSWORD":     "pw",
	}))
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=postgres password=pw dbname=yatube sslmode=disable", cfg.Database.DSN())

	cfg.Database.URL = "postgres://u@h/db"
	assert.Equal(t, "postgres://u@h/db", cfg.Database.DSN())
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"zero page size", map[string]any{"PAGE_SIZE": 0}},
		{"unknown driver", map[string]any{"DATABASE_DRIVER": "mysql"}},
		{"unknown cache", map[string]any{"CACHE_BACKEND": "memcached"}},
		{"s3 without bucket", map[string]any{"MEDIA_BACKEND": "s3"}},
		{"negative ttl", map[string]any{"INDEX_CACHE_TTL": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			assert.Error(t, err)
		})
	}
}

func TestCORSOriginsSplit(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"CORS_ALLOW_ORIGINS": "https://a.example, https://b.example,,"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestRequiredServices(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)
	assert.Empty(t, cfg.RequiredServices)

	cfg, err = fromViper(newViper(map[string]any{
		"YATUBE_REQUIRE_REDIS":    "true",
		"YATUBE_REQUIRE_DATABASE": "1",
		"YATUBE_REQUIRE_S3":       "false",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"database", "redis"}, cfg.RequiredServices)
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yatube.toml")
	require.NoError(t, os.WriteFile(path, []byte("PAGE_SIZE = 5\nCACHE_BACKEND = \"redis\"\n"), 0o644))
	t.Setenv("YATUBE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}
