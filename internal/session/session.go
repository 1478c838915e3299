// Package session agrupa las operaciones que combinan el token engine con el
// registry: emitir el par ACCESS+REFRESH, rotarlo, revocarlo y consumir
// tokens de verificación una sola vez.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/revocation"
)

var (
	// ErrRefreshRejected: propósito incorrecto, revocado o fuera del whitelist.
	ErrRefreshRejected = errors.New("session: refresh token rejected")
	// ErrTokenConsumed: el token de verificación ya se usó.
	ErrTokenConsumed = errors.New("session: token already consumed")
	// ErrWrongPurpose: el token no sirve para esta operación.
	ErrWrongPurpose = errors.New("session: wrong token purpose")
)

// Pair es lo que recibe el cliente en login y refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Manager no tiene estado propio; es seguro para uso concurrente.
type Manager struct {
	engine   *jwt.Engine
	registry *revocation.Registry
}

func NewManager(engine *jwt.Engine, registry *revocation.Registry) *Manager {
	return &Manager{engine: engine, registry: registry}
}

func (m *Manager) Engine() *jwt.Engine { return m.engine }

func (m *Manager) Registry() *revocation.Registry { return m.registry }

// IssuePair emite ACCESS+REFRESH y registra el refresh en el whitelist con
// TTL = vida del refresh.
func (m *Manager) IssuePair(ctx context.Context, subject string, roles []string) (Pair, error) {
	access, err := m.engine.Issue(subject, jwt.PurposeAccess, roles)
	if err != nil {
		return Pair{}, fmt.Errorf("session: issue access: %w", err)
	}
	refresh, err := m.engine.Issue(subject, jwt.PurposeRefresh, roles)
	if err != nil {
		return Pair{}, fmt.Errorf("session: issue refresh: %w", err)
	}
	if err := m.registry.Whitelist(ctx, refresh.JTI, m.engine.Lifetime(jwt.PurposeRefresh)); err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access.Raw, RefreshToken: refresh.Raw}, nil
}

// Rotate consume el refresh presentado y emite un par nuevo. El claim es
// atómico: de dos rotaciones concurrentes del mismo token solo una gana.
// Errores del registry se propagan como revocation.ErrUnavailable.
func (m *Manager) Rotate(ctx context.Context, c *jwt.Claims, enforceWhitelist bool) (Pair, error) {
	if c.Purpose != jwt.PurposeRefresh {
		return Pair{}, ErrWrongPurpose
	}
	if enforceWhitelist {
		ok, err := m.registry.IsWhitelisted(ctx, c.ID)
		if err != nil {
			return Pair{}, err
		}
		if !ok {
			return Pair{}, fmt.Errorf("%w: not whitelisted", ErrRefreshRejected)
		}
	}
	won, err := m.registry.ClaimForRotation(ctx, c.ID, m.remaining(c))
	if err != nil {
		return Pair{}, err
	}
	if !won {
		return Pair{}, fmt.Errorf("%w: revoked", ErrRefreshRejected)
	}
	if err := m.registry.Unwhitelist(ctx, c.ID); err != nil {
		return Pair{}, err
	}
	return m.IssuePair(ctx, c.Subject, c.Roles)
}

// Revoke blacklistea el refresh por su validez restante y lo quita del
// whitelist. Revocar un token ya revocado no falla.
func (m *Manager) Revoke(ctx context.Context, c *jwt.Claims) error {
	if c.Purpose != jwt.PurposeRefresh {
		return ErrWrongPurpose
	}
	if err := m.registry.Blacklist(ctx, c.ID, m.remaining(c)); err != nil {
		return err
	}
	return m.registry.Unwhitelist(ctx, c.ID)
}

// ConsumeOnce marca un jti como usado hasta su expiración. Retorna
// ErrTokenConsumed si ya se había usado.
func (m *Manager) ConsumeOnce(ctx context.Context, jti string, exp time.Time) error {
	won, err := m.registry.ClaimForRotation(ctx, jti, revocation.RemainingTTL(exp, m.engine.Now()))
	if err != nil {
		return err
	}
	if !won {
		return ErrTokenConsumed
	}
	return nil
}

func (m *Manager) remaining(c *jwt.Claims) time.Duration {
	return revocation.RemainingTTL(c.ExpiresAtTime(), m.engine.Now())
}
