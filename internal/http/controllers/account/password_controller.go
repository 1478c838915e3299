package account

import (
	"net/http"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// PasswordController handles POST /v1/auth/password/{forgot,reset}.
type PasswordController struct {
	service svc.PasswordService
}

func NewPasswordController(service svc.PasswordService) *PasswordController {
	return &PasswordController{service: service}
}

// Forgot siempre responde 202, exista o no el username.
func (c *PasswordController) Forgot(w http.ResponseWriter, r *http.Request) {
	fields, err := helpers.ReadFields(w, r)
	if err == nil {
		c.service.Forgot(r.Context(), helpers.Field(fields, "username"))
	}
	httperrors.WriteSuccess(w, http.StatusAccepted, "Si la cuenta existe, se enviaron instrucciones.", nil)
}

// Reset cambia el password. Requiere un token VERIFICATION (lo valida el gateway).
func (c *PasswordController) Reset(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("PasswordController.Reset"))

	ar, ok := gateway.AuthRequestFrom(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidToken)
		return
	}
	fields, err := helpers.ReadFields(w, r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithCause(err))
		return
	}
	if err := c.service.Reset(r.Context(), ar, fields["password"]); err != nil {
		writeServiceError(w, err, log)
		return
	}
	httperrors.WriteSuccess(w, http.StatusOK, "Password actualizado.", nil)
}
