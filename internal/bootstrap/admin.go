// Package bootstrap crea el primer administrador al arrancar.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/util"
	"github.com/dropDatabas3/authgate/internal/validation"
)

// RoleAdmin es el rol que habilita /v1/admin.
const RoleAdmin = "ADMIN"

// AdminConfig holds configuration for admin bootstrap.
type AdminConfig struct {
	Accounts   repository.AccountRepository
	Username   string
	Password   string
	HashParams password.Params
}

var (
	// ErrIncomplete: se configuró username sin password o viceversa.
	ErrIncomplete = errors.New("bootstrap: admin username and password must both be set")
	// ErrInvalidUsername: el username configurado no cumple el formato.
	ErrInvalidUsername = errors.New("bootstrap: invalid admin username")
)

// EnsureAdmin crea la cuenta admin (verificada, roles ADMIN+USER) si no existe.
// Sin credenciales configuradas no hace nada. Retorna true si la creó.
func EnsureAdmin(ctx context.Context, cfg AdminConfig) (bool, error) {
	username := strings.TrimSpace(cfg.Username)
	if username == "" && cfg.Password == "" {
		return false, nil
	}
	if username == "" || cfg.Password == "" {
		return false, ErrIncomplete
	}
	if !validation.ValidUsername(username) {
		return false, ErrInvalidUsername
	}
	log := logger.From(ctx).With(logger.Component("bootstrap"), logger.Username(util.MaskIdentifier(username)))

	_, err := cfg.Accounts.GetByUsername(ctx, username)
	if err == nil {
		log.Debug("admin already exists")
		return false, nil
	}
	if !repository.IsNotFound(err) {
		return false, fmt.Errorf("bootstrap: lookup admin: %w", err)
	}

	params := cfg.HashParams
	if params.KeyLen == 0 {
		params = password.Default
	}
	hash, err := password.Hash(params, cfg.Password)
	if err != nil {
		return false, fmt.Errorf("bootstrap: hash: %w", err)
	}
	acc, err := cfg.Accounts.Create(ctx, repository.CreateAccountInput{
		Username:     username,
		PasswordHash: hash,
		Roles:        []string{RoleAdmin, "USER"},
		Verified:     true,
	})
	if repository.IsConflict(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("bootstrap: create admin: %w", err)
	}
	log.Info("admin account created", logger.Subject(acc.ID))
	return true, nil
}
