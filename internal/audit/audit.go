// Package audit persiste intentos de login. Es best-effort: un fallo se
// loguea y se descarta, nunca altera la decisión de autenticación.
package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/util"
)

// Reasons estándar de un intento.
const (
	ReasonOK              = "ok"
	ReasonUnknownSubject  = "unknown_subject"
	ReasonBadPassword     = "bad_password"
	ReasonLockedTemporary = "locked_temporary"
	ReasonLockedAdmin     = "locked_admin"
	ReasonSuspended       = "suspended"
	ReasonRegistryDown    = "registry_unavailable"
)

const defaultRecordTimeout = 2 * time.Second

// Recorder escribe LoginAttempt con IDs ULID.
type Recorder struct {
	repo    repository.LoginAttemptRepository
	timeout time.Duration
	now     func() time.Time
}

// NewRecorder acepta repo nil (auditoría deshabilitada).
func NewRecorder(repo repository.LoginAttemptRepository) *Recorder {
	return &Recorder{repo: repo, timeout: defaultRecordTimeout, now: time.Now}
}

// Record guarda el intento. No retorna error a propósito.
func (r *Recorder) Record(ctx context.Context, a repository.LoginAttempt) {
	if r == nil || r.repo == nil {
		return
	}
	if a.At.IsZero() {
		a.At = r.now().UTC()
	}
	if a.ID == "" {
		a.ID = util.NewULIDAt(a.At)
	}
	// El request puede cancelarse; la auditoría usa su propio deadline.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.repo.Insert(rctx, a); err != nil {
		logger.From(ctx).Warn("login attempt audit failed",
			logger.Layer("audit"), logger.Subject(a.Subject), logger.Reason(a.Reason), logger.Err(err))
	}
}
