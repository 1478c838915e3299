// Package account contiene los controllers de registro y password.
package account

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	svc "github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"github.com/dropDatabas3/authgate/internal/security/password"
)

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error, log *zap.Logger) {
	var pe *password.PolicyError
	switch {
	case errors.As(err, &pe):
		httperrors.WriteError(w, httperrors.ErrPasswordPolicy.WithDetail(strings.Join(pe.Reasons, ",")))
	case errors.Is(err, svc.ErrCredentialsMissing):
		httperrors.WriteError(w, httperrors.ErrCredentialsMissing)
	case errors.Is(err, svc.ErrInvalidUsername):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid username format"))
	case errors.Is(err, svc.ErrUsernameTaken):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("username already registered"))
	case errors.Is(err, svc.ErrTokenUsed):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		httperrors.WriteError(w, httperrors.ErrInvalidToken)
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("account not found"))
	case errors.Is(err, svc.ErrInvalidTransition):
		httperrors.WriteError(w, httperrors.ErrInvalidTransition.WithCause(err))
	case errors.Is(err, revocation.ErrUnavailable):
		log.Error("registry unavailable", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrRegistryUnavailable.WithCause(err))
	default:
		log.Error("unexpected account error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
