package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestRegister_PoolCollectorWithoutPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg, NewPoolCollector(nil)))

	_, err := reg.Gather()
	require.NoError(t, err)
}

func TestLockoutEvents_Counts(t *testing.T) {
	before := testutil.ToFloat64(LockoutEvents.WithLabelValues("locked"))
	LockoutEvents.WithLabelValues("locked").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(LockoutEvents.WithLabelValues("locked")))
}
