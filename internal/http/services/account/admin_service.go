package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// AdminService es el path administrativo de estado. Lo usan las rutas
// /v1/admin/accounts y el CLI authctl.
type AdminService interface {
	Block(ctx context.Context, subject string) (*repository.Account, error)
	Unblock(ctx context.Context, subject string) (*repository.Account, error)
	Suspend(ctx context.Context, subject string) (*repository.Account, error)
	Status(ctx context.Context, subject string) (*repository.Account, int64, error)
}

type adminService struct{ deps Deps }

func NewAdminService(deps Deps) AdminService {
	deps.applyDefaults()
	return &adminService{deps: deps}
}

// casRetries acota los reintentos cuando el estado cambia entre lectura y escritura.
const casRetries = 3

func (s *adminService) Block(ctx context.Context, subject string) (*repository.Account, error) {
	return s.transition(ctx, subject, types.StatusAdminBlocked)
}

// Unblock vuelve a ACTIVE desde ADMIN_BLOCKED o TEMPORARILY_BLOCKED y borra
// el contador de fallos.
func (s *adminService) Unblock(ctx context.Context, subject string) (*repository.Account, error) {
	acc, err := s.transition(ctx, subject, types.StatusActive)
	if err != nil {
		return nil, err
	}
	if s.deps.Lockout != nil {
		if err := s.deps.Lockout.RecordSuccess(ctx, subject); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (s *adminService) Suspend(ctx context.Context, subject string) (*repository.Account, error) {
	return s.transition(ctx, subject, types.StatusPermanentlySuspended)
}

func (s *adminService) Status(ctx context.Context, subject string) (*repository.Account, int64, error) {
	acc, err := s.get(ctx, subject)
	if err != nil {
		return nil, 0, err
	}
	var failures int64
	if s.deps.Lockout != nil {
		if failures, err = s.deps.Lockout.Failures(ctx, subject); err != nil {
			return nil, 0, err
		}
	}
	return acc, failures, nil
}

// transition aplica from -> to con compare-and-set. Pedir el estado actual es no-op.
func (s *adminService) transition(ctx context.Context, subject string, to types.AccountStatus) (*repository.Account, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("account.admin"), logger.Subject(subject))

	for i := 0; i < casRetries; i++ {
		acc, err := s.get(ctx, subject)
		if err != nil {
			return nil, err
		}
		from := acc.Status
		if from == to {
			return acc, nil
		}
		if !types.CanTransition(from, to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		err = s.deps.Accounts.CompareAndSetStatus(ctx, subject, from, to)
		if errors.Is(err, repository.ErrStatusChanged) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("account: set status: %w", err)
		}

		acc.Status = to
		log.Info("account status changed", logger.String("from", from.String()), logger.AccountStatus(to.String()))
		deliver(ctx, s.deps.Sink, notify.NewEvent(notify.AccountStatusChanged, subject, map[string]string{
			"from": from.String(),
			"to":   to.String(),
		}))
		return acc, nil
	}
	return nil, fmt.Errorf("account: status kept changing: %w", repository.ErrStatusChanged)
}

func (s *adminService) get(ctx context.Context, subject string) (*repository.Account, error) {
	acc, err := s.deps.Accounts.GetByID(ctx, subject)
	if repository.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account: lookup: %w", err)
	}
	return acc, nil
}
