package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/util"
	"github.com/dropDatabas3/authgate/internal/validation"
)

// DefaultRoles se asignan a las cuentas registradas por el endpoint público.
var DefaultRoles = []string{"USER"}

// RegisterService inicia y completa el registro.
type RegisterService interface {
	// Initiate crea la cuenta sin verificar y entrega el token de verificación al sink.
	Initiate(ctx context.Context, username, plain string) (*repository.Account, error)
	// Complete consume el token y marca la cuenta como verificada.
	Complete(ctx context.Context, ar *gateway.AuthenticationRequest) error
}

// Deps contiene las dependencias de los services de cuenta.
type Deps struct {
	Accounts   repository.AccountRepository
	Sessions   *session.Manager
	Sink       notify.Sink
	Policy     password.Validator
	HashParams password.Params
	Lockout    CounterResetter
}

// CounterResetter borra el contador de fallos (lockout.Controller).
type CounterResetter interface {
	RecordSuccess(ctx context.Context, subject string) error
	Failures(ctx context.Context, subject string) (int64, error)
}

func (d *Deps) applyDefaults() {
	if d.Sink == nil {
		d.Sink = notify.Nop{}
	}
	if d.Policy == nil {
		d.Policy = password.Policy{}
	}
	if d.HashParams.KeyLen == 0 {
		d.HashParams = password.Default
	}
}

type registerService struct{ deps Deps }

func NewRegisterService(deps Deps) RegisterService {
	deps.applyDefaults()
	return &registerService{deps: deps}
}

func (s *registerService) Initiate(ctx context.Context, username, plain string) (*repository.Account, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("account.register"), logger.Op("Initiate"))

	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, ErrCredentialsMissing
	}
	if !validation.ValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if err := s.deps.Policy.Validate(plain); err != nil {
		return nil, err
	}
	hash, err := password.Hash(s.deps.HashParams, plain)
	if err != nil {
		return nil, fmt.Errorf("account: hash: %w", err)
	}

	acc, err := s.deps.Accounts.Create(ctx, repository.CreateAccountInput{
		Username:     username,
		PasswordHash: hash,
		Roles:        DefaultRoles,
	})
	if repository.IsConflict(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("account: create: %w", err)
	}

	tok, err := s.deps.Sessions.Engine().Issue(acc.ID, jwt.PurposeVerification, nil)
	if err != nil {
		return nil, fmt.Errorf("account: issue verification: %w", err)
	}
	e := notify.NewEvent(notify.RegistrationRequested, acc.ID, map[string]string{"username": acc.Username})
	e.Secret = tok.Raw
	deliver(ctx, s.deps.Sink, e)

	log.Info("registration initiated", logger.Subject(acc.ID), logger.Username(util.MaskIdentifier(acc.Username)))
	return acc, nil
}

func (s *registerService) Complete(ctx context.Context, ar *gateway.AuthenticationRequest) error {
	if err := consume(ctx, s.deps.Sessions, ar); err != nil {
		return err
	}
	if err := s.deps.Accounts.MarkVerified(ctx, ar.Subject); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("account: mark verified: %w", err)
	}
	deliver(ctx, s.deps.Sink, notify.NewEvent(notify.RegistrationCompleted, ar.Subject, nil))
	logger.From(ctx).Info("registration completed",
		logger.Layer("service"), logger.Component("account.register"), logger.Subject(ar.Subject))
	return nil
}

// consume marca el token de verificación como usado antes del efecto.
func consume(ctx context.Context, sessions *session.Manager, ar *gateway.AuthenticationRequest) error {
	err := sessions.ConsumeOnce(ctx, ar.JTI, ar.ExpiresAt)
	if errors.Is(err, session.ErrTokenConsumed) {
		return ErrTokenUsed
	}
	return err
}

// deliver es best-effort: el fallo se loguea y se cuenta.
func deliver(ctx context.Context, sink notify.Sink, e notify.Event) {
	if err := sink.Notify(ctx, e); err != nil {
		metrics.NotifyFailures.WithLabelValues(string(e.Type)).Inc()
		logger.From(ctx).Warn("notify failed",
			logger.Layer("service"), logger.String("event_type", string(e.Type)), logger.Subject(e.Subject), logger.Err(err))
	}
}
