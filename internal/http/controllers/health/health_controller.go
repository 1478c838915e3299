// Package health contiene el controller de /healthz y /readyz.
package health

import (
	"net/http"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	svc "github.com/dropDatabas3/authgate/internal/http/services/health"
)

type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Healthz es liveness: no consulta dependencias.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteSuccess(w, http.StatusOK, "ok", c.service.Live(r.Context()))
}

// Readyz responde 503 si el TTL store o el account store no responden.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	resp, ok := c.service.Ready(r.Context())
	if !ok {
		httperrors.WriteSuccess(w, http.StatusServiceUnavailable, "degraded", resp)
		return
	}
	httperrors.WriteSuccess(w, http.StatusOK, "ok", resp)
}
