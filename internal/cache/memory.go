package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache (in-process).
// go-cache serializa cada operación con su propio mutex, así que Add e
// IncrementInt64 son atómicas por key.
type memoryClient struct {
	c      *gocache.Cache
	prefix string
}

// NewMemory crea un cache en memoria. Las keys sin TTL no expiran.
func NewMemory(cfg Config) Client {
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &memoryClient{
		c:      gocache.New(gocache.NoExpiration, cleanup),
		prefix: cfg.Prefix,
	}
}

func (m *memoryClient) key(k string) string { return prefixed(m.prefix, k) }

// ttlOf traduce el contrato "0 = no expira" al de go-cache.
func ttlOf(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (m *memoryClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(m.key(key))
	if !ok {
		return "", ErrNotFound
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", ErrNotFound
	}
}

func (m *memoryClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.c.Set(m.key(key), value, ttlOf(ttl))
	return nil
}

func (m *memoryClient) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := m.c.Add(m.key(key), value, ttlOf(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memoryClient) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	k := m.key(key)
	for {
		if err := m.c.Add(k, int64(1), ttlOf(ttl)); err == nil {
			return 1, nil
		}
		n, err := m.c.IncrementInt64(k, 1)
		if err == nil {
			return n, nil
		}
		// La key expiró entre Add e Increment (o tiene otro tipo): si sigue
		// presente no es un contador y se reporta el error.
		if _, found := m.c.Get(k); found {
			return 0, err
		}
	}
}

func (m *memoryClient) TTL(_ context.Context, key string) (time.Duration, error) {
	_, exp, ok := m.c.GetWithExpiration(m.key(key))
	if !ok {
		return 0, ErrNotFound
	}
	if exp.IsZero() {
		return 0, nil
	}
	if d := time.Until(exp); d > 0 {
		return d, nil
	}
	return 0, ErrNotFound
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(m.key(key))
	return nil
}

func (m *memoryClient) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(m.key(key))
	return ok, nil
}

func (m *memoryClient) Ping(context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
