package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/cache/cachetest"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/lockout"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store/memory"
)

type fixture struct {
	svcs    Services
	store   *memory.Store
	sink    *notify.Recorder
	spy     *cachetest.Spy
	lockout *lockout.Controller
	engine  *jwt.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine, err := jwt.NewEngine(jwt.Config{
		Key: []byte("0123456789abcdef0123456789abcdef"),
		Lifetimes: map[jwt.Purpose]time.Duration{
			jwt.PurposeAccess:       time.Minute,
			jwt.PurposeRefresh:      time.Hour,
			jwt.PurposeVerification: 10 * time.Minute,
		},
	})
	require.NoError(t, err)
	f := &fixture{store: memory.New(), sink: &notify.Recorder{}, spy: cachetest.NewSpy(), engine: engine}
	f.lockout = lockout.New(f.spy, f.store, f.sink, lockout.Config{MaxFailedAttempts: 3, LockDuration: time.Minute})
	f.svcs = NewServices(Deps{
		Accounts:   f.store,
		Sessions:   session.NewManager(engine, revocation.New(f.spy, 0)),
		Sink:       f.sink,
		Policy:     password.Policy{MinLength: 8},
		HashParams: password.Fast,
		Lockout:    f.lockout,
	})
	return f
}

// authRequest simula lo que el gateway adjunta en un path de verificación.
func (f *fixture) authRequest(t *testing.T, raw string) *gateway.AuthenticationRequest {
	t.Helper()
	c, err := f.engine.Verify(raw)
	require.NoError(t, err)
	return &gateway.AuthenticationRequest{Subject: c.Subject, RawToken: raw, JTI: c.ID, Purpose: c.Purpose, ExpiresAt: c.ExpiresAtTime()}
}

func TestRegister_InitiateAndComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acc, err := f.svcs.Register.Initiate(ctx, "carol", "password123")
	require.NoError(t, err)
	require.False(t, acc.Verified)

	e, ok := f.sink.Last(notify.RegistrationRequested)
	require.True(t, ok)
	require.Equal(t, acc.ID, e.Subject)
	require.NotEmpty(t, e.Secret)

	ar := f.authRequest(t, e.Secret)
	require.NoError(t, f.svcs.Register.Complete(ctx, ar))
	got, err := f.store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, got.Verified)

	require.ErrorIs(t, f.svcs.Register.Complete(ctx, ar), ErrTokenUsed)
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svcs.Register.Initiate(ctx, " ", "password123")
	require.ErrorIs(t, err, ErrCredentialsMissing)

	_, err = f.svcs.Register.Initiate(ctx, "bad name", "password123")
	require.ErrorIs(t, err, ErrInvalidUsername)

	_, err = f.svcs.Register.Initiate(ctx, "dave", "short")
	var pe *password.PolicyError
	require.ErrorAs(t, err, &pe)

	_, err = f.svcs.Register.Initiate(ctx, "dave", "password123")
	require.NoError(t, err)
	_, err = f.svcs.Register.Initiate(ctx, "DAVE", "password123")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestPassword_ForgotAndReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acc, err := f.svcs.Register.Initiate(ctx, "erin", "password123")
	require.NoError(t, err)

	f.svcs.Password.Forgot(ctx, "nobody")
	_, ok := f.sink.Last(notify.PasswordResetRequested)
	require.False(t, ok)

	f.svcs.Password.Forgot(ctx, "erin")
	e, ok := f.sink.Last(notify.PasswordResetRequested)
	require.True(t, ok)

	_, err = f.lockout.RecordFailure(ctx, acc.ID)
	require.NoError(t, err)

	ar := f.authRequest(t, e.Secret)
	var pe *password.PolicyError
	require.ErrorAs(t, f.svcs.Password.Reset(ctx, ar, "short"), &pe)
	require.NoError(t, f.svcs.Password.Reset(ctx, ar, "newpassword1"))
	require.ErrorIs(t, f.svcs.Password.Reset(ctx, ar, "newpassword2"), ErrTokenUsed)

	got, err := f.store.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, password.Verify("newpassword1", got.PasswordHash))

	n, err := f.lockout.Failures(ctx, acc.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAdmin_Transitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acc, err := f.store.Create(ctx, repository.CreateAccountInput{Username: "frank", PasswordHash: "x"})
	require.NoError(t, err)

	got, err := f.svcs.Admin.Block(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusAdminBlocked, got.Status)

	// Bloquear de nuevo es no-op.
	got, err = f.svcs.Admin.Block(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusAdminBlocked, got.Status)

	got, err = f.svcs.Admin.Unblock(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusActive, got.Status)

	got, err = f.svcs.Admin.Suspend(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusPermanentlySuspended, got.Status)

	_, err = f.svcs.Admin.Unblock(ctx, acc.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svcs.Admin.Block(ctx, acc.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	e, ok := f.sink.Last(notify.AccountStatusChanged)
	require.True(t, ok)
	require.Equal(t, "PERMANENTLY_SUSPENDED", e.Data["to"])
}

func TestAdmin_UnblockClearsCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acc, err := f.store.Create(ctx, repository.CreateAccountInput{Username: "gina", PasswordHash: "x"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.lockout.RecordFailure(ctx, acc.ID)
		require.NoError(t, err)
	}
	got, n, err := f.svcs.Admin.Status(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusTemporarilyBlocked, got.Status)
	require.EqualValues(t, 3, n)

	_, err = f.svcs.Admin.Unblock(ctx, acc.ID)
	require.NoError(t, err)
	got, n, err = f.svcs.Admin.Status(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusActive, got.Status)
	require.Zero(t, n)
}

func TestAdmin_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svcs.Admin.Block(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
