package gateway

import (
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/session"
)

// logout revoca el refresh presentado y termina el request con 200. Un token
// con otro propósito es 401 sin tocar el registry. Repetir el logout con un
// token ya revocado también responde 200.
func (c *Classifier) logout(w http.ResponseWriter, r *http.Request, _ http.Handler, tok verified) error {
	if err := c.sessions.Revoke(r.Context(), tok.claims); err != nil {
		if stderrors.Is(err, session.ErrWrongPurpose) {
			return errors.ErrInvalidToken.WithCause(err)
		}
		return err
	}
	logger.From(r.Context()).Info("logout",
		logger.Component("gateway.logout"),
		logger.Subject(tok.claims.Subject),
		logger.JTI(tok.claims.ID),
	)
	errors.WriteSuccess(w, http.StatusOK, "Sesión cerrada.", nil)
	return nil
}
