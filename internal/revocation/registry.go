// Package revocation implementa el registry de jti sobre el TTL store:
// blacklist (revocados) y whitelist (refresh emitidos y vigentes).
//
// Cualquier fallo del store se reporta como ErrUnavailable; los callers
// fallan cerrado y nunca lo interpretan como "no revocado".
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/metrics"
)

// ErrUnavailable indica que el TTL store no respondió.
var ErrUnavailable = errors.New("revocation: registry unavailable")

const (
	blacklistPrefix = "bl:"
	whitelistPrefix = "wl:"

	stateBlacklisted = "blacklisted"
	stateWhitelisted = "whitelisted"

	// DefaultOpTimeout acota cada llamada al store.
	DefaultOpTimeout = 500 * time.Millisecond
)

// Registry registra el estado de revocación de cada jti.
type Registry struct {
	store     cache.Client
	opTimeout time.Duration
}

// New crea un Registry. opTimeout <= 0 usa DefaultOpTimeout.
func New(store cache.Client, opTimeout time.Duration) *Registry {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Registry{store: store, opTimeout: opTimeout}
}

// RemainingTTL = max(1s, ceil(exp-now)). Nunca menor que la validez restante.
func RemainingTTL(exp, now time.Time) time.Duration {
	d := exp.Sub(now)
	if d <= time.Second {
		return time.Second
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}

// Blacklist marca el jti como revocado. Sobrescribir un jti ya revocado es no-op.
func (r *Registry) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Set(ctx, blacklistPrefix+jti, stateBlacklisted, clampTTL(ttl)); err != nil {
		return r.fail("blacklist", err)
	}
	return nil
}

func (r *Registry) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return r.exists(ctx, "is_blacklisted", blacklistPrefix+jti)
}

// Whitelist registra un refresh recién emitido por su vida completa.
func (r *Registry) Whitelist(ctx context.Context, jti string, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Set(ctx, whitelistPrefix+jti, stateWhitelisted, clampTTL(ttl)); err != nil {
		return r.fail("whitelist", err)
	}
	return nil
}

func (r *Registry) IsWhitelisted(ctx context.Context, jti string) (bool, error) {
	return r.exists(ctx, "is_whitelisted", whitelistPrefix+jti)
}

// Unwhitelist quita el jti del whitelist (rotación o logout). Idempotente.
func (r *Registry) Unwhitelist(ctx context.Context, jti string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Delete(ctx, whitelistPrefix+jti); err != nil {
		return r.fail("unwhitelist", err)
	}
	return nil
}

// ClaimForRotation blacklistea el jti solo si no estaba revocado.
// Retorna false si otro request lo consumió antes: de dos presentaciones
// concurrentes del mismo token solo una gana.
func (r *Registry) ClaimForRotation(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	ok, err := r.store.SetNX(ctx, blacklistPrefix+jti, stateBlacklisted, clampTTL(ttl))
	if err != nil {
		return false, r.fail("claim", err)
	}
	return ok, nil
}

// Ping verifica que el store responda (readiness).
func (r *Registry) Ping(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	if err := r.store.Ping(ctx); err != nil {
		return r.fail("ping", err)
	}
	return nil
}

func (r *Registry) exists(ctx context.Context, op, key string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, r.fail(op, err)
	}
	return ok, nil
}

func (r *Registry) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}

func (r *Registry) fail(op string, err error) error {
	metrics.RegistryErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
