package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "  ")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestInTestModeFollowsEnvironment(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "true": true, "0": false, "": false, "yes": false} {
		t.Setenv(TestModeEnv, raw)
		assert.Equal(t, want, InTestMode(), "value %q", raw)
	}
}
