package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/jwt"
)

const testKey = "authctl-test-signing-key-0123456789ab"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "base64:"))
}

func TestTokenInspect(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", testKey)

	e, err := jwt.NewEngine(jwt.Config{
		Key: []byte(testKey),
		Lifetimes: map[jwt.Purpose]time.Duration{
			jwt.PurposeAccess:       time.Minute,
			jwt.PurposeRefresh:      time.Hour,
			jwt.PurposeVerification: time.Minute,
		},
	})
	require.NoError(t, err)
	tok, err := e.Issue("sub-1", jwt.PurposeRefresh, []string{"USER"})
	require.NoError(t, err)

	out, err := run(t, "token", "inspect", tok.Raw)
	require.NoError(t, err)

	var info tokenInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "sub-1", info.Subject)
	require.Equal(t, tok.JTI, info.JTI)
	require.Equal(t, "REFRESH", info.Purpose)
	require.False(t, info.Blacklisted)
	// Container nuevo: el whitelist en memoria está vacío.
	require.False(t, info.Whitelisted)

	out, err = run(t, "token", "revoke", tok.Raw)
	require.NoError(t, err)
	require.Contains(t, out, "revoked jti="+tok.JTI)
}

func TestTokenInspect_Invalid(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", testKey)
	_, err := run(t, "token", "inspect", "not-a-jwt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "token inválido")
}

func TestAccountStatus_NotFound(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", testKey)
	_, err := run(t, "account", "status", "missing")
	require.Error(t, err)
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", testKey)
	_, err := run(t, "migrate")
	require.Error(t, err)
}
