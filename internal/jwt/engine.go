// Package jwt emite y verifica los tokens HS256 del gateway.
//
// El engine es puro: no consulta el registry de revocación. Verify solo
// chequea firma y expiración; el caller decide si además necesita el registry.
package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinKeyBytes es el largo mínimo de la clave simétrica.
const MinKeyBytes = 32

// Claims es el payload: sub, jti, purpose, roles, iat, exp.
type Claims struct {
	Purpose Purpose  `json:"purpose"`
	Roles   []string `json:"roles"`
	jwtv5.RegisteredClaims
}

// Token es el resultado de Issue.
type Token struct {
	Raw       string
	JTI       string
	Subject   string
	Purpose   Purpose
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Config del engine. Now es opcional (tests inyectan un reloj fijo).
type Config struct {
	Key       []byte
	Lifetimes map[Purpose]time.Duration
	Now       func() time.Time
}

// Engine firma con una clave process-wide inmutable; seguro para uso concurrente.
type Engine struct {
	key       []byte
	lifetimes map[Purpose]time.Duration
	now       func() time.Time
	parser    *jwtv5.Parser
}

func NewEngine(cfg Config) (*Engine, error) {
	if len(cfg.Key) < MinKeyBytes {
		return nil, fmt.Errorf("jwt: signing key must be at least %d bytes", MinKeyBytes)
	}
	lifetimes := make(map[Purpose]time.Duration, 3)
	for _, p := range []Purpose{PurposeVerification, PurposeAccess, PurposeRefresh} {
		d := cfg.Lifetimes[p]
		if d <= 0 {
			return nil, fmt.Errorf("jwt: lifetime for %s must be positive", p)
		}
		lifetimes[p] = d
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)

	e := &Engine{key: key, lifetimes: lifetimes, now: now}
	e.parser = jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(func() time.Time { return e.now() }),
	)
	return e, nil
}

// Lifetime retorna la vida configurada para un propósito.
func (e *Engine) Lifetime(p Purpose) time.Duration { return e.lifetimes[p] }

// Now expone el reloj del engine (el registry calcula TTLs con el mismo).
func (e *Engine) Now() time.Time { return e.now() }

// Issue genera un jti nuevo, iat=now, exp=now+lifetime(purpose) y firma.
func (e *Engine) Issue(subject string, purpose Purpose, roles []string) (Token, error) {
	if subject == "" {
		return Token{}, errors.New("jwt: empty subject")
	}
	ttl, ok := e.lifetimes[purpose]
	if !ok {
		return Token{}, fmt.Errorf("jwt: unknown purpose %q", purpose)
	}
	if roles == nil {
		roles = []string{}
	}

	// NumericDate trunca a segundos; se trunca acá para que Token y payload coincidan.
	iat := e.now().UTC().Truncate(time.Second)
	exp := iat.Add(ttl)
	jti := uuid.NewString()

	claims := Claims{
		Purpose: purpose,
		Roles:   roles,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwtv5.NewNumericDate(iat),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	raw, err := tk.SignedString(e.key)
	if err != nil {
		return Token{}, fmt.Errorf("jwt: sign: %w", err)
	}

	return Token{
		Raw:       raw,
		JTI:       jti,
		Subject:   subject,
		Purpose:   purpose,
		Roles:     roles,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

// Verify chequea firma y expiración. No consulta el registry.
func (e *Engine) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := e.parser.ParseWithClaims(raw, claims, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return e.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" || claims.ID == "" || !claims.Purpose.IsValid() {
		return nil, &VerifyError{Kind: KindMalformed, Err: errors.New("missing sub, jti or purpose")}
	}
	return claims, nil
}

// JTIOf extrae el jti sin validar firma ni expiración.
// Usar solo sobre tokens que ya pasaron por Verify.
func (e *Engine) JTIOf(raw string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", &VerifyError{Kind: KindMalformed, Err: err}
	}
	if claims.ID == "" {
		return "", &VerifyError{Kind: KindMalformed, Err: errors.New("missing jti")}
	}
	return claims.ID, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return &VerifyError{Kind: KindExpired, Err: err}
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid),
		errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return &VerifyError{Kind: KindBadSignature, Err: err}
	case errors.Is(err, jwtv5.ErrTokenMalformed),
		errors.Is(err, jwtv5.ErrTokenRequiredClaimMissing):
		return &VerifyError{Kind: KindMalformed, Err: err}
	default:
		return &VerifyError{Kind: KindOther, Err: err}
	}
}

// ExpiresAtTime retorna exp como time.Time (zero si falta).
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// GenerateKey crea una clave aleatoria de 32 bytes en formato "base64:<...>".
func GenerateKey() (string, error) {
	b := make([]byte, MinKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "base64:" + base64.StdEncoding.EncodeToString(b), nil
}
