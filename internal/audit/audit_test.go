package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/store/memory"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ calls int }

func (f *failingRepo) Insert(context.Context, repository.LoginAttempt) error {
	f.calls++
	return errors.New("db down")
}

func (f *failingRepo) ListBySubject(context.Context, string, int) ([]repository.LoginAttempt, error) {
	return nil, nil
}

func TestRecord_FillsIDAndTime(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	NewRecorder(st).Record(ctx, repository.LoginAttempt{Subject: "s1", Username: "alice", Reason: ReasonOK, Success: true})

	got, err := st.ListBySubject(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].ID, 26)
	require.False(t, got[0].At.IsZero())
}

func TestRecord_SwallowsErrors(t *testing.T) {
	repo := &failingRepo{}
	require.NotPanics(t, func() {
		NewRecorder(repo).Record(context.Background(), repository.LoginAttempt{Subject: "s"})
	})
	require.Equal(t, 1, repo.calls)
}

func TestRecord_NilRepo(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() { r.Record(context.Background(), repository.LoginAttempt{}) })
	require.NotPanics(t, func() { NewRecorder(nil).Record(context.Background(), repository.LoginAttempt{}) })
}
