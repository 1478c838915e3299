package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authgate/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
)

// MeController handles GET /v1/me. La ruta va detrás de RequireAuthenticated.
type MeController struct{}

func NewMeController() *MeController { return &MeController{} }

func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := gateway.PrincipalFrom(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	httperrors.WriteSuccess(w, http.StatusOK, "OK", dto.MeResponse{
		Subject:   p.Subject,
		Roles:     roles,
		ExpiresAt: p.ExpiresAt,
	})
}
