// Package server arma el handler HTTP desde el Container y corre el servidor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/authgate/internal/app"
	"github.com/dropDatabas3/authgate/internal/http/controllers"
	"github.com/dropDatabas3/authgate/internal/http/gateway"
	"github.com/dropDatabas3/authgate/internal/http/router"
	"github.com/dropDatabas3/authgate/internal/http/services"
	"github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/http/services/health"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// BuildHandler arma services → controllers → router sobre las dependencias del
// Container. gatherer nil deja /metrics sin montar.
func BuildHandler(c *app.Container, gatherer prometheus.Gatherer) (http.Handler, error) {
	cfg := c.Config

	paths, err := gateway.NewPathSet(gateway.Paths{
		Public:       cfg.Gateway.PublicPaths,
		Logout:       cfg.Gateway.LogoutPaths,
		Refresh:      cfg.Gateway.RefreshPaths,
		Verification: cfg.Gateway.VerificationPaths,
	})
	if err != nil {
		return nil, fmt.Errorf("server: gateway paths: %w", err)
	}

	checks := map[string]health.Check{
		"ttl_store":     c.Cache.Ping,
		"account_store": c.Accounts.Ping,
	}

	svcs := services.New(services.Deps{
		Auth: auth.LoginDeps{
			Accounts:   c.Accounts,
			Lockout:    c.Lockout,
			Sessions:   c.Sessions,
			Audit:      c.Audit,
			HashParams: c.HashParams,
		},
		Account: account.Deps{
			Accounts:   c.Accounts,
			Sessions:   c.Sessions,
			Sink:       c.Sink,
			Policy:     c.Policy,
			HashParams: c.HashParams,
			Lockout:    c.Lockout,
		},
		Health: health.Deps{
			Checks:  checks,
			Version: cfg.App.Version,
			Timeout: 2 * time.Second,
		},
	})

	return router.New(router.Deps{
		Controllers: controllers.New(svcs),
		Classifier: gateway.NewClassifier(gateway.Config{
			Paths:            paths,
			Sessions:         c.Sessions,
			EnforceWhitelist: cfg.Gateway.EnforceWhitelist,
		}),
		LoginLimiter: c.LoginLimiter,
		Gatherer:     gatherer,
	}), nil
}

// New crea el *http.Server con los timeouts configurados.
func New(c *app.Container, h http.Handler) *http.Server {
	s := c.Config.Server
	return &http.Server{
		Addr:              s.Addr,
		Handler:           h,
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
	}
}

// Run sirve hasta que ctx se cancela y luego hace shutdown ordenado
// acotado por shutdownTimeout.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	log := logger.L().With(logger.Layer("server"))

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("http server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return <-errCh
}
