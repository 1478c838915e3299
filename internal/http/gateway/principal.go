package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/jwt"
)

// Principal es la identidad autenticada por un ACCESS token. Vive solo en el
// context del request.
type Principal struct {
	Subject   string
	Roles     []string
	JTI       string
	ExpiresAt time.Time
}

// HasRole compara sin distinguir mayúsculas.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(role)) {
			return true
		}
	}
	return false
}

// AuthenticationRequest se construye una vez por request tras verificar un
// token de acción. Nunca se persiste.
type AuthenticationRequest struct {
	Subject   string
	RawToken  string
	JTI       string
	Purpose   jwt.Purpose
	Path      string
	Method    string
	ExpiresAt time.Time
}

type ctxKey string

const (
	ctxPrincipalKey   ctxKey = "principal"
	ctxAuthRequestKey ctxKey = "auth_request"
)

// WithPrincipal inyecta el principal en el contexto.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// PrincipalFrom retorna el principal o (nil, false) si el request es anónimo.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(*Principal)
	return p, ok && p != nil
}

func WithAuthRequest(ctx context.Context, a *AuthenticationRequest) context.Context {
	return context.WithValue(ctx, ctxAuthRequestKey, a)
}

// AuthRequestFrom retorna el AuthenticationRequest del flujo de verificación.
func AuthRequestFrom(ctx context.Context) (*AuthenticationRequest, bool) {
	a, ok := ctx.Value(ctxAuthRequestKey).(*AuthenticationRequest)
	return a, ok && a != nil
}
