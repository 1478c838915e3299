// Package cache provee el TTL key-value store del gateway.
//
// Soporta:
//   - Memory (in-process sobre go-cache, para desarrollo/testing)
//   - Redis (compartido entre réplicas, para producción)
//
// Registry de revocación, contador de lockout y rate limiter se apoyan en
// este contrato; todas las operaciones son atómicas por key.
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones del TTL store.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX guarda el valor solo si la key no existe. Retorna true si lo escribió.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Incr incrementa atómicamente un contador. Si la key no existía se crea
	// en 1 con el ttl dado; incrementos posteriores no tocan el TTL.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL retorna el tiempo restante. ErrNotFound si la key no existe;
	// 0 si existe sin expiración.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Delete elimina una key. No falla si no existe.
	Delete(ctx context.Context, key string) error

	// Exists verifica si una key existe.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver          string // "memory" | "redis"
	Addr            string
	Password        string
	DB              int
	Prefix          string // Prefijo para todas las keys
	CleanupInterval time.Duration
}

// ErrNotFound indica que la key no existe.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg), nil
	default:
		return nil, errors.New("cache: unknown driver " + cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
