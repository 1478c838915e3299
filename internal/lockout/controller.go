// Package lockout cuenta logins fallidos sobre el TTL store y bloquea
// temporalmente la cuenta al llegar al umbral.
//
// El TTL del contador es el timer del bloqueo: cuando la key expira el
// bloqueo terminó. No hay sweeper; la cuenta vuelve a ACTIVE recién en el
// próximo intento de login (CheckAndReconcileLock).
package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// ErrUnavailable indica que el contador no se pudo leer o escribir.
var ErrUnavailable = errors.New("lockout: counter store unavailable")

const counterPrefix = "lo:"

// Config del controller.
type Config struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
	OpTimeout         time.Duration
}

// Outcome es el resultado de RecordFailure.
type Outcome struct {
	Count int64
	// Locked es true si el contador alcanzó el umbral con este fallo.
	Locked bool
}

// Controller es el único escritor del contador de fallos.
type Controller struct {
	store    cache.Client
	accounts repository.AccountRepository
	sink     notify.Sink
	cfg      Config
}

func New(store cache.Client, accounts repository.AccountRepository, sink notify.Sink, cfg Config) *Controller {
	if cfg.MaxFailedAttempts < 1 {
		cfg.MaxFailedAttempts = 3
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = 15 * time.Minute
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 500 * time.Millisecond
	}
	if sink == nil {
		sink = notify.Nop{}
	}
	return &Controller{store: store, accounts: accounts, sink: sink, cfg: cfg}
}

func counterKey(subject string) string { return counterPrefix + subject }

// RecordFailure incrementa atómicamente el contador. El primer fallo crea la
// key con ttl = LockDuration; los siguientes no extienden la ventana. Al
// llegar al umbral la cuenta pasa ACTIVE -> TEMPORARILY_BLOCKED con
// compare-and-set, así un bloqueo admin o una suspensión no se pisan.
func (c *Controller) RecordFailure(ctx context.Context, subject string) (Outcome, error) {
	log := logger.From(ctx).With(logger.Component("lockout"), logger.Op("RecordFailure"), logger.Subject(subject))

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	n, err := c.store.Incr(opCtx, counterKey(subject), c.cfg.LockDuration)
	cancel()
	if err != nil {
		metrics.RegistryErrors.WithLabelValues("lockout_incr").Inc()
		return Outcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.LockoutEvents.WithLabelValues("failure").Inc()

	out := Outcome{Count: n}
	if n < int64(c.cfg.MaxFailedAttempts) {
		log.Debug("failed attempt recorded", logger.Count(int(n)))
		return out, nil
	}
	out.Locked = true

	err = c.accounts.CompareAndSetStatus(ctx, subject, types.StatusActive, types.StatusTemporarilyBlocked)
	switch {
	case err == nil:
		metrics.LockoutEvents.WithLabelValues("locked").Inc()
		log.Info("account temporarily blocked", logger.Count(int(n)))
		c.notify(ctx, notify.NewEvent(notify.AccountLocked, subject, map[string]string{
			"failures":      strconv.FormatInt(n, 10),
			"lock_duration": c.cfg.LockDuration.String(),
		}))
	case errors.Is(err, repository.ErrStatusChanged):
		// Ya bloqueada (por un fallo concurrente o por un admin).
		log.Debug("account already not ACTIVE", logger.Count(int(n)))
	default:
		return out, fmt.Errorf("lockout: set status: %w", err)
	}
	return out, nil
}

// RecordSuccess borra el contador. Idempotente.
func (c *Controller) RecordSuccess(ctx context.Context, subject string) error {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	if err := c.store.Delete(opCtx, counterKey(subject)); err != nil {
		metrics.RegistryErrors.WithLabelValues("lockout_delete").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.LockoutEvents.WithLabelValues("reset").Inc()
	return nil
}

// Failures retorna el contador actual (0 si no existe).
func (c *Controller) Failures(ctx context.Context, subject string) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	v, err := c.store.Get(opCtx, counterKey(subject))
	if cache.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lockout: corrupt counter for %s: %w", subject, err)
	}
	return n, nil
}

// CheckAndReconcileLock retorna el estado efectivo de la cuenta. Si está
// TEMPORARILY_BLOCKED y el contador ya expiró, la pasa a ACTIVE.
func (c *Controller) CheckAndReconcileLock(ctx context.Context, subject string) (types.AccountStatus, error) {
	acc, err := c.accounts.GetByID(ctx, subject)
	if err != nil {
		return "", err
	}
	return c.Reconcile(ctx, acc)
}

// Reconcile es CheckAndReconcileLock sobre una cuenta ya leída.
func (c *Controller) Reconcile(ctx context.Context, acc *repository.Account) (types.AccountStatus, error) {
	if acc.Status != types.StatusTemporarilyBlocked {
		return acc.Status, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	present, err := c.store.Exists(opCtx, counterKey(acc.ID))
	cancel()
	if err != nil {
		metrics.RegistryErrors.WithLabelValues("lockout_exists").Inc()
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if present {
		return types.StatusTemporarilyBlocked, nil
	}

	err = c.accounts.CompareAndSetStatus(ctx, acc.ID, types.StatusTemporarilyBlocked, types.StatusActive)
	switch {
	case err == nil:
		metrics.LockoutEvents.WithLabelValues("unlocked").Inc()
		logger.From(ctx).Info("temporary block elapsed",
			logger.Component("lockout"), logger.Op("Reconcile"), logger.Subject(acc.ID))
		c.notify(ctx, notify.NewEvent(notify.AccountUnlocked, acc.ID, nil))
		return types.StatusActive, nil
	case errors.Is(err, repository.ErrStatusChanged):
		// Otro request reconcilió o un admin cambió el estado: releer.
		fresh, gerr := c.accounts.GetByID(ctx, acc.ID)
		if gerr != nil {
			return "", gerr
		}
		return fresh.Status, nil
	default:
		return "", fmt.Errorf("lockout: reconcile: %w", err)
	}
}

func (c *Controller) notify(ctx context.Context, e notify.Event) {
	if err := c.sink.Notify(ctx, e); err != nil {
		metrics.NotifyFailures.WithLabelValues(string(e.Type)).Inc()
		logger.From(ctx).Warn("notify failed",
			logger.Component("lockout"), logger.String("event_type", string(e.Type)), logger.Err(err))
	}
}
