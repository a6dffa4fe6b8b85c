package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.test, ,https://b.test ")

	c := Load()
	assert.Equal(t, "bonsai-buddy", c.AppName)
	assert.True(t, c.UseMemoryStore())
	assert.Equal(t, time.Hour, c.AccessTTL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, c.CORSOrigins())
	assert.Equal(t, 1200, c.ImageMaxWidth)
	assert.Equal(t, "Bonsai Buddy", c.Branding().AppName)
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	c := &Config{DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "bonsai", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/bonsai?sslmode=disable", c.PostgresDSN())
}
