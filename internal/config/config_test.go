package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsAndYAML(t *testing.T) {
	p := writeYAML(t, `
jwt:
  signing_key: "`+testKey+`"
  access_ttl: 5m
lockout:
  max_failed_attempts: 5
`)
	c, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, c.JWT.AccessTTL)
	require.Equal(t, 720*time.Hour, c.JWT.RefreshTTL)
	require.Equal(t, 5, c.Lockout.MaxFailedAttempts)
	require.Equal(t, 15*time.Minute, c.LockDuration())
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, 500*time.Millisecond, c.Cache.OpTimeout)
	require.Contains(t, c.Gateway.PublicPaths, "/v1/auth/login")
	require.False(t, c.Gateway.EnforceWhitelist)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	p := writeYAML(t, "jwt:\n  signing_key: \""+testKey+"\"\n")
	t.Setenv("LOCKOUT_MAX_FAILED_ATTEMPTS", "7")
	t.Setenv("JWT_REFRESH_TTL", "1h")
	t.Setenv("GATEWAY_PUBLIC_PATHS", "/a, /b ,")
	t.Setenv("GATEWAY_ENFORCE_WHITELIST", "true")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 7, c.Lockout.MaxFailedAttempts)
	require.Equal(t, time.Hour, c.JWT.RefreshTTL)
	require.Equal(t, []string{"/a", "/b"}, c.Gateway.PublicPaths)
	require.True(t, c.Gateway.EnforceWhitelist)
}

func TestLoad_ShortSigningKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "short")
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "signing_key")
}

func TestSigningKeyBytes_Base64(t *testing.T) {
	raw := []byte(strings.Repeat("k", 48))
	c := Default()
	c.JWT.SigningKey = "base64:" + base64.StdEncoding.EncodeToString(raw)
	b, err := c.SigningKeyBytes()
	require.NoError(t, err)
	require.Equal(t, raw, b)
	require.NoError(t, c.Validate())

	c.JWT.SigningKey = "base64:%%%"
	_, err = c.SigningKeyBytes()
	require.Error(t, err)
}

func TestValidate_BackendRequirements(t *testing.T) {
	c := Default()
	c.JWT.SigningKey = testKey
	c.Storage.Driver = "postgres"
	c.Cache.Kind = "redis"
	c.Notify.Kind = "kafka"

	err := c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.dsn")
	require.Contains(t, err.Error(), "cache.redis.addr")
	require.Contains(t, err.Error(), "notify.kafka.brokers")
}
