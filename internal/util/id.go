package util

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidOnce    sync.Once
	ulidMu      sync.Mutex
	ulidEntropy *ulid.MonotonicEntropy
)

// NewULID genera un ID ordenable lexicográficamente (auditoría, eventos).
// Seguro para uso concurrente.
func NewULID() string {
	return NewULIDAt(time.Now().UTC())
}

// NewULIDAt genera un ULID con el timestamp dado.
func NewULIDAt(t time.Time) string {
	ulidOnce.Do(func() { ulidEntropy = ulid.Monotonic(rand.Reader, 0) })
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy).String()
}
