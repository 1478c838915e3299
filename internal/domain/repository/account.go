package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/types"
)

// Account es la cuenta autenticable. El perfil de usuario vive fuera del gateway.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Roles        []string
	Status       types.AccountStatus
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAccountInput contiene los datos para crear una cuenta.
type CreateAccountInput struct {
	Username     string
	PasswordHash string
	Roles        []string
	// Verified permite crear cuentas ya confirmadas (bootstrap/CLI).
	Verified bool
}

// AccountRepository define operaciones sobre cuentas.
type AccountRepository interface {
	// GetByUsername busca una cuenta por username (case-insensitive).
	// Retorna ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// GetByID busca una cuenta por su ID (subject del token).
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Account, error)

	// Create crea una cuenta ACTIVE. Retorna ErrConflict si el username existe.
	Create(ctx context.Context, input CreateAccountInput) (*Account, error)

	// CompareAndSetStatus cambia el estado solo si el actual es from.
	// Retorna ErrStatusChanged si el estado actual es otro, ErrNotFound si no existe.
	CompareAndSetStatus(ctx context.Context, id string, from, to types.AccountStatus) error

	// MarkVerified marca la cuenta como verificada (registro completado).
	MarkVerified(ctx context.Context, id string) error

	// UpdatePasswordHash reemplaza el hash de password.
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// Ping verifica conectividad (readiness).
	Ping(ctx context.Context) error
}

// LoginAttempt es el registro de auditoría de un intento de login.
type LoginAttempt struct {
	ID        string
	Subject   string // vacío si el username no existe
	Username  string
	ClientIP  string
	UserAgent string
	Success   bool
	Reason    string
	At        time.Time
}

// LoginAttemptRepository persiste intentos de login (best-effort).
type LoginAttemptRepository interface {
	// Insert guarda un intento.
	Insert(ctx context.Context, a LoginAttempt) error

	// ListBySubject retorna los últimos intentos, más recientes primero.
	ListBySubject(ctx context.Context, subject string, limit int) ([]LoginAttempt, error)
}
