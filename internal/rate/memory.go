package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por key (x/time/rate) para una sola réplica.
// Max tokens se reponen a lo largo de Window; los buckets sin uso expiran.
type MemoryLimiter struct {
	buckets *gocache.Cache
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		buckets: gocache.New(2*window, window),
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		l.buckets.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	fresh := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(key, fresh, gocache.DefaultExpiration); err != nil {
		// Otro request lo creó primero.
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return fresh
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()
	lim := l.bucket(key)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Result{Allowed: false, RetryAfter: time.Second}, nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, RetryAfter: d}, nil
	}
	remaining := int64(lim.TokensAt(now))
	return Result{
		Allowed:     true,
		Remaining:   max(remaining, 0),
		CurrentHits: int64(l.burst) - remaining,
	}, nil
}
