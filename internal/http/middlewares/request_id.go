package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

const requestIDHeader = "X-Request-ID"

// WithRequestID propaga o genera el request ID y deja en el contexto un
// logger con request_id, method y path.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := setRequestID(r.Context(), id)
			ctx = logger.ToContext(ctx, logger.L().With(
				logger.RequestID(id),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
