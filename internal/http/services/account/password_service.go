package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/util"
)

// PasswordService maneja forgot/reset.
type PasswordService interface {
	// Forgot nunca revela si el username existe: los errores se loguean.
	Forgot(ctx context.Context, username string)
	// Reset consume el token, guarda el hash nuevo y limpia el contador de fallos.
	Reset(ctx context.Context, ar *gateway.AuthenticationRequest, plain string) error
}

type passwordService struct{ deps Deps }

func NewPasswordService(deps Deps) PasswordService {
	deps.applyDefaults()
	return &passwordService{deps: deps}
}

func (s *passwordService) Forgot(ctx context.Context, username string) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("account.password"), logger.Op("Forgot"))

	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	log = log.With(logger.Username(util.MaskIdentifier(username)))

	acc, err := s.deps.Accounts.GetByUsername(ctx, username)
	if err != nil {
		if !repository.IsNotFound(err) {
			log.Error("lookup failed", logger.Err(err))
		}
		return
	}
	if acc.Status.IsTerminal() {
		log.Info("reset skipped", logger.AccountStatus(acc.Status.String()))
		return
	}

	tok, err := s.deps.Sessions.Engine().Issue(acc.ID, jwt.PurposeVerification, nil)
	if err != nil {
		log.Error("issue verification failed", logger.Err(err))
		return
	}
	e := notify.NewEvent(notify.PasswordResetRequested, acc.ID, nil)
	e.Secret = tok.Raw
	deliver(ctx, s.deps.Sink, e)
	log.Info("password reset requested", logger.Subject(acc.ID))
}

func (s *passwordService) Reset(ctx context.Context, ar *gateway.AuthenticationRequest, plain string) error {
	if plain == "" {
		return ErrCredentialsMissing
	}
	// La política se valida antes de consumir: un password rechazado no quema el token.
	if err := s.deps.Policy.Validate(plain); err != nil {
		return err
	}
	if _, err := s.deps.Accounts.GetByID(ctx, ar.Subject); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("account: lookup: %w", err)
	}
	if err := consume(ctx, s.deps.Sessions, ar); err != nil {
		return err
	}

	hash, err := password.Hash(s.deps.HashParams, plain)
	if err != nil {
		return fmt.Errorf("account: hash: %w", err)
	}
	if err := s.deps.Accounts.UpdatePasswordHash(ctx, ar.Subject, hash); err != nil {
		return fmt.Errorf("account: update hash: %w", err)
	}
	if s.deps.Lockout != nil {
		if err := s.deps.Lockout.RecordSuccess(ctx, ar.Subject); err != nil {
			return err
		}
	}
	deliver(ctx, s.deps.Sink, notify.NewEvent(notify.PasswordResetCompleted, ar.Subject, nil))
	logger.From(ctx).Info("password reset",
		logger.Layer("service"), logger.Component("account.password"), logger.Subject(ar.Subject))
	return nil
}
