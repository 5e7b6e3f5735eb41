package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("CACHE_MAX_ENTRIES", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, "./data", cfg.LocalStoreDir)
	assert.Equal(t, int64(4096), cfg.CacheMaxEntries)
	assert.Equal(t, 0, cfg.ExtractWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("PORT", "9000")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("S3_BUCKET", "docs-bucket")
	t.Setenv("EXTRACT_WORKERS", "8")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	require.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "s3", cfg.ObjectStoreType)
	assert.Equal(t, "docs-bucket", cfg.S3Bucket)
	assert.Equal(t, 8, cfg.ExtractWorkers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("EXTRACT_WORKERS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 0, cfg.ExtractWorkers)
}

func TestNormalizeStoreType(t *testing.T) {
	assert.Equal(t, "s3", normalizeStoreType(" S3 "))
	assert.Equal(t, "local", normalizeStoreType("gcs"))
	assert.Equal(t, "local", normalizeStoreType(""))
}
