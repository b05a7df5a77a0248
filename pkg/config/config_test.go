package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://backend.local/")
	t.Setenv("AUTH_ADMIN_ROLES", "admin, superadmin")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://backend.local", cfg.Backend.BaseURL)
	require.Equal(t, 500*time.Millisecond, cfg.Review.SearchDebounce)
	require.Equal(t, 10, cfg.Review.PageSize)
	require.Equal(t, []string{"admin", "superadmin"}, cfg.Auth.AdminRoles)
	require.True(t, cfg.Auth.IsAdminRole("SuperAdmin"))
	require.False(t, cfg.Auth.IsAdminRole("user"))
}

func TestParseDurationFallback(t *testing.T) {
	require.Equal(t, time.Second, parseDuration("", time.Second))
	require.Equal(t, time.Second, parseDuration("soon", time.Second))
	require.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}

func TestExportLinkSecretFallsBackToAuthSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("ENABLE_EXPORT_LINKS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Exports.Enabled)
	require.Equal(t, "jwt-secret", cfg.Exports.Secret)
	require.Equal(t, 15*time.Minute, cfg.Exports.TTL)
}
