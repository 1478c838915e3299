package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/bootstrap"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/security/password"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.JWT.SigningKey = "app-test-signing-key-0123456789abcdef"
	return cfg
}

func TestNew_MemoryBackends(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Notify.Kind = "none"

	c, err := New(context.Background(), cfg, WithHashParams(password.Fast))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	require.Nil(t, c.PG)
	require.NotNil(t, c.LoginLimiter)
	require.Equal(t, notify.Nop{}, c.Sink)
	require.NoError(t, c.Cache.Ping(context.Background()))
	require.ErrorIs(t, c.Migrate(context.Background()), ErrNoDatabase)
}

func TestNew_BootstrapAdmin(t *testing.T) {
	cfg := testConfig()
	cfg.Bootstrap.AdminUsername = "root"
	cfg.Bootstrap.AdminPassword = "rootpass"

	c, err := New(context.Background(), cfg, WithHashParams(password.Fast))
	require.NoError(t, err)
	defer c.Close()

	acc, err := c.Accounts.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	require.Contains(t, acc.Roles, bootstrap.RoleAdmin)
	require.True(t, acc.Verified)
}

func TestNew_BootstrapIncomplete(t *testing.T) {
	cfg := testConfig()
	cfg.Bootstrap.AdminUsername = "root"

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, bootstrap.ErrIncomplete)
}

func TestNew_RejectsShortKey(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.SigningKey = "short"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
