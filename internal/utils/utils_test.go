package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	for _, k := range []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE"} {
		t.Setenv(k, "")
	}
	assert.Equal(t, "postgres://postgres@localhost:5432/vacancy?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PASSWORD", "s3cret")
	t.Setenv("PG_DB", "gaz")
	assert.Equal(t, "postgres://postgres:s3cret@db:5432/gaz?sslmode=disable", BuildPostgresDSNFromEnv())
}

func TestOpenRedisFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "bad")
	rc := OpenRedisFromEnv()
	defer rc.Close()
	assert.Equal(t, "cache:6380", rc.Options().Addr)
	assert.Equal(t, 0, rc.Options().DB)
}
