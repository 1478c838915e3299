package lockout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache/cachetest"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/store/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctl      *Controller
	store    *cachetest.Spy
	accounts *memory.Store
	sink     *notify.Recorder
	subject  string
}

func newFixture(t *testing.T, max int, lock time.Duration) *fixture {
	t.Helper()
	accounts := memory.New()
	acc, err := accounts.Create(context.Background(), repository.CreateAccountInput{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)

	spy := cachetest.NewSpy()
	sink := &notify.Recorder{}
	return &fixture{
		ctl:      New(spy, accounts, sink, Config{MaxFailedAttempts: max, LockDuration: lock}),
		store:    spy,
		accounts: accounts,
		sink:     sink,
		subject:  acc.ID,
	}
}

func (f *fixture) status(t *testing.T) types.AccountStatus {
	t.Helper()
	a, err := f.accounts.GetByID(context.Background(), f.subject)
	require.NoError(t, err)
	return a.Status
}

func TestRecordFailure_BlocksOnNthAndNotBefore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, time.Minute)

	for i := 1; i <= 2; i++ {
		out, err := f.ctl.RecordFailure(ctx, f.subject)
		require.NoError(t, err)
		require.EqualValues(t, i, out.Count)
		require.False(t, out.Locked)
		require.Equal(t, types.StatusActive, f.status(t))
	}

	out, err := f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)
	require.True(t, out.Locked)
	require.Equal(t, types.StatusTemporarilyBlocked, f.status(t))

	ev, ok := f.sink.Last(notify.AccountLocked)
	require.True(t, ok)
	require.Equal(t, f.subject, ev.Subject)
	require.Equal(t, "3", ev.Data["failures"])
}

func TestRecordSuccess_ClearsCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, time.Minute)

	_, err := f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)
	_, err = f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)

	require.NoError(t, f.ctl.RecordSuccess(ctx, f.subject))
	require.NoError(t, f.ctl.RecordSuccess(ctx, f.subject))

	n, err := f.ctl.Failures(ctx, f.subject)
	require.NoError(t, err)
	require.Zero(t, n)

	// La cuenta empieza de cero: dos fallos más no bloquean.
	for i := 0; i < 2; i++ {
		out, err := f.ctl.RecordFailure(ctx, f.subject)
		require.NoError(t, err)
		require.False(t, out.Locked)
	}
}

func TestRecordFailure_DoesNotOverrideAdminBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, time.Minute)
	require.NoError(t, f.accounts.CompareAndSetStatus(ctx, f.subject, types.StatusActive, types.StatusAdminBlocked))

	out, err := f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)
	require.True(t, out.Locked)
	require.Equal(t, types.StatusAdminBlocked, f.status(t))
	_, ok := f.sink.Last(notify.AccountLocked)
	require.False(t, ok)
}

func TestReconcile_CounterPresentStaysBlocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, time.Minute)
	_, err := f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)

	st, err := f.ctl.CheckAndReconcileLock(ctx, f.subject)
	require.NoError(t, err)
	require.Equal(t, types.StatusTemporarilyBlocked, st)
}

func TestReconcile_CounterAbsentUnlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, time.Minute)
	_, err := f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)

	// Simula la expiración del contador.
	require.NoError(t, f.store.Delete(ctx, counterKey(f.subject)))

	st, err := f.ctl.CheckAndReconcileLock(ctx, f.subject)
	require.NoError(t, err)
	require.Equal(t, types.StatusActive, st)
	require.Equal(t, types.StatusActive, f.status(t))

	_, ok := f.sink.Last(notify.AccountUnlocked)
	require.True(t, ok)
}

func TestReconcile_CounterExpiresByTTL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, time.Second)
	_, err := f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := f.ctl.CheckAndReconcileLock(ctx, f.subject)
		return err == nil && st == types.StatusActive
	}, 3*time.Second, 100*time.Millisecond)
}

func TestReconcile_OtherStatusesUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, time.Minute)
	require.NoError(t, f.accounts.CompareAndSetStatus(ctx, f.subject, types.StatusActive, types.StatusPermanentlySuspended))

	f.store.Reset()
	st, err := f.ctl.CheckAndReconcileLock(ctx, f.subject)
	require.NoError(t, err)
	require.Equal(t, types.StatusPermanentlySuspended, st)
	require.Zero(t, f.store.Calls())
}

func TestStoreDown_Unavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, time.Minute)
	f.store.SetFail(true)

	_, err := f.ctl.RecordFailure(ctx, f.subject)
	require.True(t, errors.Is(err, ErrUnavailable))
	require.True(t, errors.Is(f.ctl.RecordSuccess(ctx, f.subject), ErrUnavailable))

	f.store.SetFail(false)
	_, err = f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)
	_, err = f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)
	_, err = f.ctl.RecordFailure(ctx, f.subject)
	require.NoError(t, err)

	f.store.SetFail(true)
	_, err = f.ctl.CheckAndReconcileLock(ctx, f.subject)
	require.True(t, errors.Is(err, ErrUnavailable))
}
