package cache

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// backends retorna memory siempre y redis cuando REDIS_ADDR está definido.
func backends(t *testing.T) map[string]Client {
	t.Helper()
	out := map[string]Client{"memory": NewMemory(Config{Prefix: "t"})}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc, err := NewRedis(Config{Addr: addr, Prefix: "authgate-test-" + uuid.NewString()})
		require.NoError(t, err)
		out["redis"] = rc
	}
	t.Cleanup(func() {
		for _, c := range out {
			_ = c.Close()
		}
	})
	return out
}

func TestClient_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "missing")
			require.True(t, IsNotFound(err))

			require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
			v, err := c.Get(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, "v", v)

			ok, err := c.Exists(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)

			require.NoError(t, c.Delete(ctx, "k"))
			require.NoError(t, c.Delete(ctx, "k"))
			ok, err = c.Exists(ctx, "k")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestClient_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "short", "x", 50*time.Millisecond))
			ok, _ := c.Exists(ctx, "short")
			require.True(t, ok)

			require.Eventually(t, func() bool {
				ok, err := c.Exists(ctx, "short")
				return err == nil && !ok
			}, 2*time.Second, 20*time.Millisecond)
		})
	}
}

func TestClient_SetNX_FirstWins(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := c.SetNX(ctx, "nx", "a", time.Minute)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = c.SetNX(ctx, "nx", "b", time.Minute)
			require.NoError(t, err)
			require.False(t, ok)

			v, _ := c.Get(ctx, "nx")
			require.Equal(t, "a", v)
		})
	}
}

func TestClient_IncrKeepsFixedWindow(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			n, err := c.Incr(ctx, "ctr", time.Minute)
			require.NoError(t, err)
			require.EqualValues(t, 1, n)

			first, err := c.TTL(ctx, "ctr")
			require.NoError(t, err)
			require.Greater(t, first, 50*time.Second)

			n, err = c.Incr(ctx, "ctr", time.Hour)
			require.NoError(t, err)
			require.EqualValues(t, 2, n)

			// El segundo Incr no debe extender la ventana a una hora.
			after, err := c.TTL(ctx, "ctr")
			require.NoError(t, err)
			require.LessOrEqual(t, after, time.Minute)

			v, err := c.Get(ctx, "ctr")
			require.NoError(t, err)
			require.Equal(t, "2", v)
		})
	}
}

func TestClient_IncrConcurrent(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 50
			var wg sync.WaitGroup
			seen := make(chan int64, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					n, err := c.Incr(ctx, "race", time.Minute)
					if err == nil {
						seen <- n
					}
				}()
			}
			wg.Wait()
			close(seen)

			unique := map[int64]bool{}
			for n := range seen {
				require.False(t, unique[n], "duplicate count %d", n)
				unique[n] = true
			}
			require.Len(t, unique, workers)
		})
	}
}

func TestClient_TTLMissing(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.TTL(ctx, "nope")
			require.True(t, IsNotFound(err))

			require.NoError(t, c.Set(ctx, "forever", "1", 0))
			d, err := c.TTL(ctx, "forever")
			require.NoError(t, err)
			require.Zero(t, d)
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "memcached"})
	require.Error(t, err)
}
