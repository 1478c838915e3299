package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
)

// RequireAuthenticated exige un Principal (ACCESS token válido).
func RequireAuthenticated() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := gateway.PrincipalFrom(r.Context()); !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles exige autenticación y al menos uno de los roles.
func RequireRoles(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := gateway.PrincipalFrom(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			errors.WriteError(w, errors.ErrForbidden.WithDetail("insufficient role"))
		})
	}
}
