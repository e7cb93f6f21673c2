package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":5007", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.DBTimeout)
	assert.Equal(t, time.Minute, cfg.DraftSweepInterval)
	assert.Equal(t, 2*time.Second, cfg.GeoTimeout)
	assert.True(t, cfg.GeoLookupEnabled)
	assert.False(t, cfg.EnableRedisCache)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, 1, cfg.RedisDB)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("CORS_ORIGINS", "https://naass.com,https://www.naass.com")
	t.Setenv("DB_TIMEOUT", "5s")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestParseRejectsInvalidCombinations(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Parse()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORE_DRIVER", "sqlite")
	_, err = Parse()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "")
	_, err = Parse()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
