package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	dto "github.com/dropDatabas3/authgate/internal/http/dto/account"
	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	svc "github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// AdminController handles /v1/admin/accounts/{subject}/...
// Las rutas van detrás de RequireRoles("ADMIN").
type AdminController struct {
	service svc.AdminService
}

func NewAdminController(service svc.AdminService) *AdminController {
	return &AdminController{service: service}
}

func (c *AdminController) Block(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, "Block", c.service.Block)
}

func (c *AdminController) Unblock(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, "Unblock", c.service.Unblock)
}

func (c *AdminController) Suspend(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, "Suspend", c.service.Suspend)
}

// Get retorna estado y contador de fallos.
func (c *AdminController) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("AdminController.Get"))
	acc, failures, err := c.service.Status(r.Context(), chi.URLParam(r, "subject"))
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	httperrors.WriteSuccess(w, http.StatusOK, "OK", statusResponse(acc, failures))
}

func (c *AdminController) apply(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string) (*repository.Account, error)) {
	subject := chi.URLParam(r, "subject")
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("AdminController."+op), logger.Subject(subject))

	acc, err := fn(r.Context(), subject)
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	httperrors.WriteSuccess(w, http.StatusOK, "Estado actualizado.", statusResponse(acc, 0))
}

func statusResponse(acc *repository.Account, failures int64) dto.StatusResponse {
	return dto.StatusResponse{
		Subject:        acc.ID,
		Username:       acc.Username,
		Status:         acc.Status.String(),
		Verified:       acc.Verified,
		FailedAttempts: failures,
	}
}
