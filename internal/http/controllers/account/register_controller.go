package account

import (
	"net/http"

	dto "github.com/dropDatabas3/authgate/internal/http/dto/account"
	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// RegisterController handles POST /v1/auth/register y /v1/auth/register/confirm.
type RegisterController struct {
	service svc.RegisterService
}

func NewRegisterController(service svc.RegisterService) *RegisterController {
	return &RegisterController{service: service}
}

// Register inicia el registro. El token de verificación viaja por el sink, no en la respuesta.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	fields, err := helpers.ReadFields(w, r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithCause(err))
		return
	}
	acc, err := c.service.Initiate(r.Context(), helpers.Field(fields, "username"), fields["password"])
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	httperrors.WriteSuccess(w, http.StatusAccepted, "Registro iniciado. Revise su bandeja para confirmar.", dto.RegisterResponse{Subject: acc.ID})
}

// Confirm completa el registro. Requiere un token VERIFICATION (lo valida el gateway).
func (c *RegisterController) Confirm(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RegisterController.Confirm"))

	ar, ok := gateway.AuthRequestFrom(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidToken)
		return
	}
	if err := c.service.Complete(r.Context(), ar); err != nil {
		writeServiceError(w, err, log)
		return
	}
	httperrors.WriteSuccess(w, http.StatusOK, "Registro completado.", nil)
}
