package gateway

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// access establece el Principal para tokens ACCESS. Con otro propósito el
// request sigue sin identidad.
func (c *Classifier) access(w http.ResponseWriter, r *http.Request, next http.Handler, tok verified) error {
	if tok.claims.Purpose != jwt.PurposeAccess {
		next.ServeHTTP(w, r)
		return nil
	}
	p := &Principal{
		Subject:   tok.claims.Subject,
		Roles:     tok.claims.Roles,
		JTI:       tok.claims.ID,
		ExpiresAt: tok.claims.ExpiresAtTime(),
	}
	ctx := logger.Enrich(r.Context(), logger.Subject(p.Subject))
	next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
	return nil
}
