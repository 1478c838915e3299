// Package app arma el grafo de dependencias del gateway a partir de la config.
// Lo comparten el servidor HTTP y authctl.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/bootstrap"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/lockout"
	"github.com/dropDatabas3/authgate/internal/notify"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/rate"
	"github.com/dropDatabas3/authgate/internal/revocation"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store/memory"
	"github.com/dropDatabas3/authgate/internal/store/pg"
	migrations "github.com/dropDatabas3/authgate/migrations/postgres"
	rdb "github.com/redis/go-redis/v9"
)

// Container contiene las dependencias ya construidas.
type Container struct {
	Config *config.Config

	Cache         cache.Client
	Accounts      repository.AccountRepository
	LoginAttempts repository.LoginAttemptRepository
	PG            *pg.Store // nil con storage.driver=memory

	Engine   *jwt.Engine
	Registry *revocation.Registry
	Sessions *session.Manager
	Lockout  *lockout.Controller
	Sink     notify.Sink
	Audit    *audit.Recorder

	LoginLimiter rate.Limiter // nil con rate.enabled=false
	HashParams   password.Params
	Policy       password.Validator

	closers []func() error
}

// Option ajusta el armado (tests inyectan backends y reloj).
type Option func(*options)

type options struct {
	cache      cache.Client
	sink       notify.Sink
	now        func() time.Time
	hashParams *password.Params
}

// WithCache usa c como TTL store en lugar del configurado.
func WithCache(c cache.Client) Option { return func(o *options) { o.cache = c } }

// WithSink reemplaza el sink de eventos.
func WithSink(s notify.Sink) Option { return func(o *options) { o.sink = s } }

// WithClock fija el reloj del token engine.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithHashParams cambia el costo de argon2id (tests usan password.Fast).
func WithHashParams(p password.Params) Option { return func(o *options) { o.hashParams = &p } }

// New construye el Container. Ante error cierra lo que ya había abierto.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (c *Container, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c = &Container{Config: cfg, HashParams: password.Default, Policy: password.Policy{}}
	if o.hashParams != nil {
		c.HashParams = *o.hashParams
	}
	defer func() {
		if err != nil {
			_ = c.Close()
			c = nil
		}
	}()

	log := logger.L().With(logger.Layer("app"), logger.Component("container"))

	if err = c.initCache(cfg, o.cache); err != nil {
		return c, err
	}
	if err = c.initStore(ctx, cfg); err != nil {
		return c, err
	}
	if err = c.initSink(cfg, o.sink); err != nil {
		return c, err
	}

	key, err := cfg.SigningKeyBytes()
	if err != nil {
		return c, err
	}
	c.Engine, err = jwt.NewEngine(jwt.Config{
		Key: key,
		Lifetimes: map[jwt.Purpose]time.Duration{
			jwt.PurposeAccess:       cfg.JWT.AccessTTL,
			jwt.PurposeRefresh:      cfg.JWT.RefreshTTL,
			jwt.PurposeVerification: cfg.JWT.VerificationTTL,
		},
		Now: o.now,
	})
	if err != nil {
		return c, err
	}

	c.Registry = revocation.New(c.Cache, cfg.Cache.OpTimeout)
	c.Sessions = session.NewManager(c.Engine, c.Registry)
	c.Lockout = lockout.New(c.Cache, c.Accounts, c.Sink, lockout.Config{
		MaxFailedAttempts: cfg.Lockout.MaxFailedAttempts,
		LockDuration:      cfg.LockDuration(),
		OpTimeout:         cfg.Cache.OpTimeout,
	})
	c.Audit = audit.NewRecorder(c.LoginAttempts)

	if cfg.Storage.Driver == "postgres" && cfg.Storage.AutoMigrate {
		if err = c.Migrate(ctx); err != nil {
			return c, err
		}
	}

	created, err := bootstrap.EnsureAdmin(ctx, bootstrap.AdminConfig{
		Accounts:   c.Accounts,
		Username:   cfg.Bootstrap.AdminUsername,
		Password:   cfg.Bootstrap.AdminPassword,
		HashParams: c.HashParams,
	})
	if err != nil {
		return c, err
	}

	log.Info("container ready",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.String("notify", cfg.Notify.Kind),
		logger.Bool("rate_limit", c.LoginLimiter != nil),
		logger.Bool("admin_created", created),
	)
	return c, nil
}

func (c *Container) initCache(cfg *config.Config, injected cache.Client) error {
	if injected != nil {
		c.Cache = injected
		if cfg.Rate.Enabled {
			c.LoginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		}
		return nil
	}

	switch cfg.Cache.Kind {
	case "redis":
		// Un solo *redis.Client compartido por TTL store y rate limiter.
		client := rdb.NewClient(&rdb.Options{
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			MaxRetries: 1,
		})
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("app: redis ping: %w", err)
		}
		c.Cache = cache.NewRedisFromClient(client, cfg.Cache.Redis.Prefix)
		c.closers = append(c.closers, c.Cache.Close)
		if cfg.Rate.Enabled {
			c.LoginLimiter = rate.NewRedisLimiter(client, cfg.Cache.Redis.Prefix+":rl:login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		}
	default:
		cl, err := cache.New(cache.Config{Driver: "memory", CleanupInterval: cfg.Cache.Memory.CleanupInterval})
		if err != nil {
			return err
		}
		c.Cache = cl
		c.closers = append(c.closers, cl.Close)
		if cfg.Rate.Enabled {
			c.LoginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		}
	}
	return nil
}

func (c *Container) initStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("app: postgres: %w", err)
		}
		c.PG = st
		c.Accounts = st.Accounts()
		c.LoginAttempts = st.LoginAttempts()
		c.closers = append(c.closers, func() error { st.Close(); return nil })
	default:
		st := memory.New()
		c.Accounts = st
		c.LoginAttempts = st
	}
	return nil
}

func (c *Container) initSink(cfg *config.Config, injected notify.Sink) error {
	if injected != nil {
		c.Sink = injected
		return nil
	}
	switch cfg.Notify.Kind {
	case "kafka":
		k := notify.NewKafkaSink(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic)
		c.Sink = k
		c.closers = append(c.closers, k.Close)
	case "none":
		c.Sink = notify.Nop{}
	default:
		c.Sink = notify.LogSink{}
	}
	return nil
}

// ErrNoDatabase: migrate pedido con storage.driver=memory.
var ErrNoDatabase = errors.New("app: migrations require storage.driver=postgres")

// Migrate aplica las migraciones embebidas del account store.
func (c *Container) Migrate(ctx context.Context) error {
	if c.PG == nil {
		return ErrNoDatabase
	}
	res, err := pg.NewMigrator(migrations.CoreFS, migrations.CoreDir).Run(ctx, c.PG.Pool())
	if err != nil {
		return fmt.Errorf("app: migrate: %w", err)
	}
	logger.L().Info("migrations applied",
		logger.Layer("app"),
		logger.Count(len(res.Applied)),
		logger.Int("skipped", len(res.Skipped)),
		logger.DurationMs(res.Duration),
	)
	return nil
}

// Close libera recursos en orden inverso de apertura.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
