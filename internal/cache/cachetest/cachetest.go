// Package cachetest tiene dobles de cache.Client para tests de otros paquetes.
package cachetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache"
)

// ErrDown es el error que devuelve Spy cuando Fail está activo.
var ErrDown = errors.New("cachetest: store down")

// Spy envuelve un cache.Client contando llamadas y permitiendo simular caídas.
type Spy struct {
	cache.Client

	calls atomic.Int64
	fail  atomic.Bool

	mu   sync.Mutex
	keys []string
}

// NewSpy envuelve un store en memoria nuevo.
func NewSpy() *Spy {
	return &Spy{Client: cache.NewMemory(cache.Config{})}
}

// Calls retorna cuántas operaciones se ejecutaron (excluye Ping y Close).
func (s *Spy) Calls() int64 { return s.calls.Load() }

// Keys retorna las keys tocadas, en orden.
func (s *Spy) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// Reset pone los contadores en cero.
func (s *Spy) Reset() {
	s.calls.Store(0)
	s.mu.Lock()
	s.keys = nil
	s.mu.Unlock()
}

// SetFail hace que todas las operaciones devuelvan ErrDown.
func (s *Spy) SetFail(v bool) { s.fail.Store(v) }

func (s *Spy) track(key string) error {
	s.calls.Add(1)
	s.mu.Lock()
	s.keys = append(s.keys, key)
	s.mu.Unlock()
	if s.fail.Load() {
		return ErrDown
	}
	return nil
}

func (s *Spy) Get(ctx context.Context, key string) (string, error) {
	if err := s.track(key); err != nil {
		return "", err
	}
	return s.Client.Get(ctx, key)
}

func (s *Spy) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.track(key); err != nil {
		return err
	}
	return s.Client.Set(ctx, key, value, ttl)
}

func (s *Spy) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := s.track(key); err != nil {
		return false, err
	}
	return s.Client.SetNX(ctx, key, value, ttl)
}

func (s *Spy) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := s.track(key); err != nil {
		return 0, err
	}
	return s.Client.Incr(ctx, key, ttl)
}

func (s *Spy) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := s.track(key); err != nil {
		return 0, err
	}
	return s.Client.TTL(ctx, key)
}

func (s *Spy) Delete(ctx context.Context, key string) error {
	if err := s.track(key); err != nil {
		return err
	}
	return s.Client.Delete(ctx, key)
}

func (s *Spy) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.track(key); err != nil {
		return false, err
	}
	return s.Client.Exists(ctx, key)
}

func (s *Spy) Ping(ctx context.Context) error {
	if s.fail.Load() {
		return ErrDown
	}
	return s.Client.Ping(ctx)
}
