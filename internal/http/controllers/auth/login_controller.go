// Package auth contiene los controllers de autenticación.
package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	dto "github.com/dropDatabas3/authgate/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
	svc "github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// LoginController handles POST /v1/auth/login.
type LoginController struct {
	service svc.LoginService
}

func NewLoginController(service svc.LoginService) *LoginController {
	return &LoginController{service: service}
}

// Login lee username/password del form (o JSON) y responde el par de tokens.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	fields, err := helpers.ReadFields(w, r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithCause(err))
		return
	}
	req := dto.LoginRequest{Username: helpers.Field(fields, "username"), Password: fields["password"]}

	pair, err := c.service.Login(ctx, svc.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		ClientIP:  mw.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	httperrors.WriteSuccess(w, http.StatusOK, "Login exitoso.", dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// handleError maps service errors to HTTP responses.
func (c *LoginController) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, svc.ErrCredentialsMissing):
		httperrors.WriteError(w, httperrors.ErrCredentialsMissing)
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrLockedTemporary):
		httperrors.WriteError(w, httperrors.ErrAccountLockedTemporary)
	case errors.Is(err, svc.ErrLockedAdmin):
		httperrors.WriteError(w, httperrors.ErrAccountLockedAdmin)
	case errors.Is(err, svc.ErrSuspended):
		httperrors.WriteError(w, httperrors.ErrAccountSuspended)
	case errors.Is(err, svc.ErrRegistryUnavailable):
		log.Error("registry unavailable during login", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrRegistryUnavailable.WithCause(err))
	default:
		log.Error("unexpected login error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
