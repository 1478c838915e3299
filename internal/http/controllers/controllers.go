// Package controllers agrupa los controllers por dominio.
package controllers

import (
	"github.com/dropDatabas3/authgate/internal/http/controllers/account"
	"github.com/dropDatabas3/authgate/internal/http/controllers/auth"
	"github.com/dropDatabas3/authgate/internal/http/controllers/health"
	"github.com/dropDatabas3/authgate/internal/http/services"
)

type Controllers struct {
	Auth    *auth.Controllers
	Account *account.Controllers
	Health  *health.HealthController
}

func New(s services.Services) *Controllers {
	return &Controllers{
		Auth:    auth.NewControllers(s.Auth),
		Account: account.NewControllers(s.Account),
		Health:  health.NewHealthController(s.Health),
	}
}
