package gateway

import (
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/session"
)

// refresh rota el refresh presentado: lo consume y emite un par nuevo (201).
// Propósito incorrecto, revocado o fuera del whitelist responden el mismo 401.
func (c *Classifier) refresh(w http.ResponseWriter, r *http.Request, _ http.Handler, tok verified) error {
	pair, err := c.sessions.Rotate(r.Context(), tok.claims, c.enforceWhitelist)
	if err != nil {
		if stderrors.Is(err, session.ErrWrongPurpose) || stderrors.Is(err, session.ErrRefreshRejected) {
			return errors.ErrInvalidToken.WithCause(err)
		}
		return err
	}
	logger.From(r.Context()).Info("refresh rotated",
		logger.Component("gateway.refresh"),
		logger.Subject(tok.claims.Subject),
		logger.JTI(tok.claims.ID),
	)
	errors.WriteSuccess(w, http.StatusCreated, "Tokens renovados.", pair)
	return nil
}
