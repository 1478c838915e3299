// Package services es el composition root de los services HTTP.
//
// Cada dominio vive en su sub-paquete (auth, account, health) con su propio
// aggregator; este archivo los junta.
package services

import (
	"github.com/dropDatabas3/authgate/internal/http/services/account"
	"github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/http/services/health"
)

// Deps contiene las dependencias base para crear los services.
type Deps struct {
	Auth    auth.LoginDeps
	Account account.Deps
	Health  health.Deps
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	Auth    auth.Services
	Account account.Services
	Health  health.HealthService
}

// New crea el aggregator.
func New(d Deps) Services {
	return Services{
		Auth:    auth.NewServices(d.Auth),
		Account: account.NewServices(d.Account),
		Health:  health.NewHealthService(d.Health),
	}
}
