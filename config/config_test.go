package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, "redis", cfg.CacheDriver)
	assert.Equal(t, 30*time.Second, cfg.QueryStaleTime)
	assert.Equal(t, 1, cfg.QueryRetry)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Empty(t, cfg.OAuthAllowedRedirects)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("QUERY_STALE_TIME", "2m")
	t.Setenv("QUERY_RETRY", "3")
	t.Setenv("OAUTH_GITHUB_CLIENT_ID", "client-123")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")
	t.Setenv("OAUTH_ALLOWED_REDIRECTS", "https://app.example.com/auth/done")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 2*time.Minute, cfg.QueryStaleTime)
	assert.Equal(t, 3, cfg.QueryRetry)
	assert.Equal(t, "client-123", cfg.OAuthGitHubClientID)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
	assert.Equal(t, []string{"https://app.example.com/auth/done"}, cfg.OAuthAllowedRedirects)
}
