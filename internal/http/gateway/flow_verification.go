package gateway

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/jwt"
)

// verification adjunta el AuthenticationRequest y continúa. El consumo single-use
// del token lo hace el controller downstream antes del efecto.
func (c *Classifier) verification(w http.ResponseWriter, r *http.Request, next http.Handler, tok verified) error {
	if tok.claims.Purpose != jwt.PurposeVerification {
		return errors.ErrInvalidToken
	}
	ar := &AuthenticationRequest{
		Subject:   tok.claims.Subject,
		RawToken:  tok.raw,
		JTI:       tok.claims.ID,
		Purpose:   tok.claims.Purpose,
		Path:      r.URL.Path,
		Method:    r.Method,
		ExpiresAt: tok.claims.ExpiresAtTime(),
	}
	next.ServeHTTP(w, r.WithContext(WithAuthRequest(r.Context(), ar)))
	return nil
}
