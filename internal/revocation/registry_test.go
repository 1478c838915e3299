package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache/cachetest"
	"github.com/stretchr/testify/require"
)

func TestRemainingTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		exp  time.Time
		want time.Duration
	}{
		{"already expired", now.Add(-time.Minute), time.Second},
		{"exactly now", now, time.Second},
		{"sub-second", now.Add(300 * time.Millisecond), time.Second},
		{"rounds up", now.Add(90*time.Second + time.Millisecond), 91 * time.Second},
		{"whole seconds", now.Add(10 * time.Minute), 10 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RemainingTTL(tc.exp, now))
		})
	}
}

func TestBlacklist_VisibleImmediatelyAndExpires(t *testing.T) {
	ctx := context.Background()
	spy := cachetest.NewSpy()
	r := New(spy, 0)

	require.NoError(t, r.Blacklist(ctx, "jti-1", time.Second))
	ok, err := r.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)

	require.Eventually(t, func() bool {
		ok, err := r.IsBlacklisted(ctx, "jti-1")
		return err == nil && !ok
	}, 3*time.Second, 50*time.Millisecond)
}

func TestBlacklist_Overwrite(t *testing.T) {
	ctx := context.Background()
	r := New(cachetest.NewSpy(), 0)
	require.NoError(t, r.Blacklist(ctx, "j", time.Minute))
	require.NoError(t, r.Blacklist(ctx, "j", time.Minute))
	ok, err := r.IsBlacklisted(ctx, "j")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWhitelist_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := New(cachetest.NewSpy(), 0)

	require.NoError(t, r.Whitelist(ctx, "r1", time.Hour))
	ok, err := r.IsWhitelisted(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)

	// Blacklist y whitelist son espacios de keys separados.
	bl, err := r.IsBlacklisted(ctx, "r1")
	require.NoError(t, err)
	require.False(t, bl)

	require.NoError(t, r.Unwhitelist(ctx, "r1"))
	require.NoError(t, r.Unwhitelist(ctx, "r1"))
	ok, err = r.IsWhitelisted(ctx, "r1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClaimForRotation_SingleWinner(t *testing.T) {
	ctx := context.Background()
	r := New(cachetest.NewSpy(), 0)

	first, err := r.ClaimForRotation(ctx, "r1", time.Hour)
	require.NoError(t, err)
	require.True(t, first)

	second, err := r.ClaimForRotation(ctx, "r1", time.Hour)
	require.NoError(t, err)
	require.False(t, second)

	ok, err := r.IsBlacklisted(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegistry_StoreDownIsUnavailable(t *testing.T) {
	ctx := context.Background()
	spy := cachetest.NewSpy()
	spy.SetFail(true)
	r := New(spy, 0)

	_, err := r.IsBlacklisted(ctx, "j")
	require.True(t, errors.Is(err, ErrUnavailable))
	require.True(t, errors.Is(r.Blacklist(ctx, "j", time.Minute), ErrUnavailable))
	require.True(t, errors.Is(r.Whitelist(ctx, "j", time.Minute), ErrUnavailable))
	_, err = r.ClaimForRotation(ctx, "j", time.Minute)
	require.True(t, errors.Is(err, ErrUnavailable))
	require.True(t, errors.Is(r.Ping(ctx), ErrUnavailable))
}
