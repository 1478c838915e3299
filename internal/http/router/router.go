// Package router arma el árbol chi del gateway.
//
// Orden de la cadena global: recover, request id, metrics, logging, security
// headers, no-store y por último el classifier. Logout y refresh los termina el
// classifier; sus rutas existen para que el método y el patrón queden registrados.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/authgate/internal/http/controllers"
	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
	"github.com/dropDatabas3/authgate/internal/rate"
)

// Paths por defecto de las rutas.
const (
	PathLogin        = "/v1/auth/login"
	PathRegister     = "/v1/auth/register"
	PathConfirm      = "/v1/auth/register/confirm"
	PathForgot       = "/v1/auth/password/forgot"
	PathReset        = "/v1/auth/password/reset"
	PathRefresh      = "/v1/auth/refresh"
	PathLogout       = "/v1/auth/logout"
	PathMe           = "/v1/me"
	PathAdminAccount = "/v1/admin/accounts/{subject}"
	PathHealthz      = "/healthz"
	PathReadyz       = "/readyz"
	PathMetrics      = "/metrics"
)

// RoleAdmin habilita el path administrativo.
const RoleAdmin = "ADMIN"

// Deps contiene las dependencias del router.
type Deps struct {
	Controllers  *controllers.Controllers
	Classifier   *gateway.Classifier
	LoginLimiter rate.Limiter        // nil = sin rate limiting
	Gatherer     prometheus.Gatherer // nil = sin /metrics
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		d.Classifier.Middleware,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	c := d.Controllers

	// Ops
	r.Get(PathHealthz, c.Health.Healthz)
	r.Get(PathReadyz, c.Health.Readyz)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, PathMetrics, promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// Auth públicos
	var loginLimit mw.Middleware
	if d.LoginLimiter != nil {
		loginLimit = mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.LoginLimiter, KeyFunc: mw.IPOnlyRateKey})
	}
	r.Method(http.MethodPost, PathLogin, mw.Chain(http.HandlerFunc(c.Auth.Login.Login), loginLimit))
	r.Post(PathRegister, c.Account.Register.Register)
	r.Post(PathForgot, c.Account.Password.Forgot)

	// Acción (el classifier ya validó el token)
	r.Post(PathConfirm, c.Account.Register.Confirm)
	r.Post(PathReset, c.Account.Password.Reset)
	r.Post(PathRefresh, terminatedByGateway)
	r.Post(PathLogout, terminatedByGateway)

	// Protegidos
	r.With(mw.RequireAuthenticated()).Get(PathMe, c.Auth.Me.Me)
	r.Route(PathAdminAccount, func(r chi.Router) {
		r.Use(mw.RequireRoles(RoleAdmin))
		r.Get("/", c.Account.Admin.Get)
		r.Post("/block", c.Account.Admin.Block)
		r.Post("/unblock", c.Account.Admin.Unblock)
		r.Post("/suspend", c.Account.Admin.Suspend)
	})

	return r
}

// terminatedByGateway solo se alcanza si el path no está configurado como
// logout/refresh en gateway.*_paths.
func terminatedByGateway(w http.ResponseWriter, _ *http.Request) {
	httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("path not handled by gateway"))
}
