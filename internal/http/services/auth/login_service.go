package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/lockout"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/util"
)

// Errores de login
var (
	ErrCredentialsMissing  = errors.New("credentials missing")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrLockedTemporary     = errors.New("account temporarily blocked")
	ErrLockedAdmin         = errors.New("account blocked by admin")
	ErrSuspended           = errors.New("account permanently suspended")
	ErrRegistryUnavailable = errors.New("registry unavailable")
)

// LoginInput son los datos del intento. ClientIP y UserAgent solo van a auditoría.
type LoginInput struct {
	Username  string
	Password  string
	ClientIP  string
	UserAgent string
}

// LoginService autentica por username/password.
type LoginService interface {
	Login(ctx context.Context, in LoginInput) (session.Pair, error)
}

// LoginDeps contiene las dependencias para el login service.
type LoginDeps struct {
	Accounts repository.AccountRepository
	Lockout  *lockout.Controller
	Sessions *session.Manager
	Audit    *audit.Recorder // nil = sin auditoría
	// HashParams de los hashes almacenados; se usa para el hash descartable.
	HashParams password.Params
}

type loginService struct {
	deps      LoginDeps
	dummyHash string
}

// NewLoginService crea un nuevo servicio de login.
func NewLoginService(deps LoginDeps) LoginService {
	// Hash descartable para que un username inexistente cueste lo mismo que uno real.
	params := deps.HashParams
	if params.KeyLen == 0 {
		params = password.Default
	}
	dummy, _ := password.Hash(params, "authgate-dummy-password")
	return &loginService{deps: deps, dummyHash: dummy}
}

func (s *loginService) Login(ctx context.Context, in LoginInput) (session.Pair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	// Paso 0: Normalización
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return session.Pair{}, ErrCredentialsMissing
	}
	log = log.With(logger.Username(util.MaskIdentifier(in.Username)))

	attempt := repository.LoginAttempt{Username: in.Username, ClientIP: in.ClientIP, UserAgent: in.UserAgent}

	// Paso 1: Buscar la cuenta
	acc, err := s.deps.Accounts.GetByUsername(ctx, in.Username)
	if repository.IsNotFound(err) {
		_ = password.Verify(in.Password, s.dummyHash)
		log.Info("login rejected", logger.Outcome("rejected"), logger.Reason("subject_not_found"))
		s.audit(ctx, attempt, audit.ReasonUnknownSubject)
		return session.Pair{}, ErrInvalidCredentials
	}
	if err != nil {
		return session.Pair{}, fmt.Errorf("login: lookup: %w", err)
	}
	attempt.Subject = acc.ID
	log = log.With(logger.Subject(acc.ID))

	// Paso 2: Estado de lock (reconciliación lazy del bloqueo temporal)
	status, err := s.deps.Lockout.Reconcile(ctx, acc)
	if err != nil {
		return session.Pair{}, s.unavailable(ctx, attempt, err)
	}
	if reason, lockErr := statusError(status); lockErr != nil {
		log.Info("login rejected", logger.Outcome("rejected"), logger.AccountStatus(status.String()))
		s.audit(ctx, attempt, reason)
		return session.Pair{}, lockErr
	}

	// Paso 3: Password
	if !password.Verify(in.Password, acc.PasswordHash) {
		out, err := s.deps.Lockout.RecordFailure(ctx, acc.ID)
		if err != nil {
			return session.Pair{}, s.unavailable(ctx, attempt, err)
		}
		if out.Locked {
			log.Info("login rejected", logger.Outcome("rejected"), logger.Reason("threshold_reached"), logger.Count(int(out.Count)))
			s.audit(ctx, attempt, audit.ReasonLockedTemporary)
			return session.Pair{}, ErrLockedTemporary
		}
		log.Info("login rejected", logger.Outcome("rejected"), logger.Reason("bad_password"), logger.Count(int(out.Count)))
		s.audit(ctx, attempt, audit.ReasonBadPassword)
		return session.Pair{}, ErrInvalidCredentials
	}

	// Paso 4: Éxito
	if err := s.deps.Lockout.RecordSuccess(ctx, acc.ID); err != nil {
		return session.Pair{}, s.unavailable(ctx, attempt, err)
	}
	pair, err := s.deps.Sessions.IssuePair(ctx, acc.ID, acc.Roles)
	if err != nil {
		return session.Pair{}, s.unavailable(ctx, attempt, err)
	}
	s.audit(ctx, attempt, audit.ReasonOK)
	log.Info("login ok", logger.Outcome("success"))
	return pair, nil
}

// statusError traduce el estado efectivo; ACTIVE no es error.
func statusError(st types.AccountStatus) (string, error) {
	switch st {
	case types.StatusActive:
		return "", nil
	case types.StatusTemporarilyBlocked:
		return audit.ReasonLockedTemporary, ErrLockedTemporary
	case types.StatusAdminBlocked:
		return audit.ReasonLockedAdmin, ErrLockedAdmin
	default:
		return audit.ReasonSuspended, ErrSuspended
	}
}

func (s *loginService) unavailable(ctx context.Context, attempt repository.LoginAttempt, err error) error {
	if errors.Is(err, lockout.ErrUnavailable) || errors.Is(err, revocation.ErrUnavailable) {
		s.audit(ctx, attempt, audit.ReasonRegistryDown)
		return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
	}
	return fmt.Errorf("login: %w", err)
}

func (s *loginService) audit(ctx context.Context, a repository.LoginAttempt, reason string) {
	a.Success = reason == audit.ReasonOK
	a.Reason = reason
	s.deps.Audit.Record(ctx, a)
}
