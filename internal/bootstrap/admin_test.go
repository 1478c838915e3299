package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/store/memory"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	cfg := AdminConfig{Accounts: st, Username: "root", Password: "changeme123", HashParams: password.Fast}

	created, err := EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	require.True(t, created)

	acc, err := st.GetByUsername(ctx, "root")
	require.NoError(t, err)
	require.Contains(t, acc.Roles, RoleAdmin)
	require.True(t, acc.Verified)
	require.True(t, password.Verify("changeme123", acc.PasswordHash))

	created, err = EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	require.False(t, created)
}

func TestEnsureAdmin_NoopAndIncomplete(t *testing.T) {
	ctx := context.Background()
	created, err := EnsureAdmin(ctx, AdminConfig{Accounts: memory.New()})
	require.NoError(t, err)
	require.False(t, created)

	_, err = EnsureAdmin(ctx, AdminConfig{Accounts: memory.New(), Username: "root"})
	require.ErrorIs(t, err, ErrIncomplete)

	_, err = EnsureAdmin(ctx, AdminConfig{Accounts: memory.New(), Username: "no spaces", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidUsername)
}
