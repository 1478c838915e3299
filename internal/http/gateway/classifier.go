// Package gateway decide, por request, si el caller puede seguir.
//
// El Classifier categoriza el path, extrae el bearer token, lo verifica con el
// engine y despacha al flujo que corresponde a (categoría, propósito). Los
// paths de acción fallan cerrado; los protegidos dejan pasar sin identidad y
// la autorización queda para middlewares.RequireAuthenticated/RequireRoles.
package gateway

import (
	stderrors "errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/observability/tracking"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"github.com/dropDatabas3/authgate/internal/session"
)

// Config del classifier.
type Config struct {
	Paths    *PathSet
	Sessions *session.Manager
	// EnforceWhitelist exige que el refresh presentado siga en el whitelist.
	EnforceWhitelist bool
}

// flow atiende un request con token verificado. Si retorna error sin haber
// escrito la respuesta, el classifier la escribe.
type flow func(w http.ResponseWriter, r *http.Request, next http.Handler, tok verified) error

type verified struct {
	raw    string
	claims *jwt.Claims
}

// Classifier es seguro para uso concurrente; no guarda estado por request.
type Classifier struct {
	paths            *PathSet
	sessions         *session.Manager
	engine           *jwt.Engine
	enforceWhitelist bool
	flows            map[Category]flow
}

func NewClassifier(cfg Config) *Classifier {
	c := &Classifier{
		paths:            cfg.Paths,
		sessions:         cfg.Sessions,
		engine:           cfg.Sessions.Engine(),
		enforceWhitelist: cfg.EnforceWhitelist,
	}
	if c.paths == nil {
		c.paths, _ = NewPathSet(Paths{})
	}
	c.flows = map[Category]flow{
		CategoryLogout:       c.logout,
		CategoryRefresh:      c.refresh,
		CategoryVerification: c.verification,
		CategoryProtected:    c.access,
	}
	return c
}

// Middleware retorna el classifier como middleware HTTP.
func (c *Classifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cat := c.paths.Categorize(r.URL.Path)
		if cat == CategoryPublic {
			decision(cat, "pass")
			next.ServeHTTP(w, r)
			return
		}

		log := logger.From(r.Context()).With(logger.Component("gateway.classifier"), logger.Category(cat.String()))

		raw, ok := bearerToken(r)
		if !ok {
			c.reject(w, r, next, cat, log, "header_missing_or_malformed")
			return
		}

		claims, err := c.engine.Verify(raw)
		if err != nil {
			kind := jwt.KindOf(err)
			metrics.TokenVerifyFailures.WithLabelValues(string(kind)).Inc()
			log.Debug("token verification failed", logger.Reason(string(kind)), logger.Err(err))
			c.reject(w, r, next, cat, log, "token_"+string(kind))
			return
		}

		tw := &trackingWriter{ResponseWriter: w}
		if err := c.flows[cat](tw, r, next, verified{raw: raw, claims: claims}); err != nil {
			decision(cat, "error")
			if !tw.written {
				c.writeFlowError(tw, r, cat, claims, err, log)
			}
			return
		}
		decision(cat, "flow")
	})
}

// reject: header ausente/malformado o verificación fallida.
func (c *Classifier) reject(w http.ResponseWriter, r *http.Request, next http.Handler, cat Category, log *zap.Logger, reason string) {
	if cat.IsAction() {
		decision(cat, "rejected")
		log.Info("action token rejected", logger.Reason(reason), logger.Path(r.URL.Path))
		writeUnauthorized(w)
		return
	}
	decision(cat, "anonymous")
	next.ServeHTTP(w, r)
}

func (c *Classifier) writeFlowError(w http.ResponseWriter, r *http.Request, cat Category, claims *jwt.Claims, err error, log *zap.Logger) {
	log = log.With(logger.Subject(claims.Subject), logger.JTI(claims.ID), logger.Purpose(claims.Purpose.String()))

	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, revocation.ErrUnavailable):
		log.Error("registry unavailable", logger.Err(err))
		tracking.CaptureError(r.Context(), err, map[string]string{"component": "gateway", "category": cat.String()})
		errors.WriteError(w, errors.ErrRegistryUnavailable.WithCause(err))
	case stderrors.As(err, &appErr):
		log.Info("request rejected", logger.Reason(appErr.Code), logger.Err(appErr.Err))
		if appErr.HTTPStatus == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		}
		errors.WriteError(w, appErr)
	default:
		log.Error("flow failed", logger.Err(err))
		tracking.CaptureError(r.Context(), err, map[string]string{"component": "gateway", "category": cat.String()})
		errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	errors.WriteError(w, errors.ErrInvalidToken)
}

func decision(cat Category, outcome string) {
	metrics.ClassifierDecisions.WithLabelValues(cat.String(), outcome).Inc()
}

// bearerToken extrae el token de "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}
	return tok, true
}
