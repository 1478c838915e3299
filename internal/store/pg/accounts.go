package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepo implementa repository.AccountRepository.
type AccountRepo struct{ pool *pgxpool.Pool }

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountColumns = `id, username, password_hash, roles, status, verified, created_at, updated_at`

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var (
		a      repository.Account
		id     uuid.UUID
		status string
	)
	if err := row.Scan(&id, &a.Username, &a.PasswordHash, &a.Roles, &status, &a.Verified, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	a.ID = id.String()
	a.Status = types.AccountStatus(status)
	return &a, nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*repository.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM account WHERE LOWER(username) = LOWER($1) LIMIT 1`
	return scanAccount(r.pool.QueryRow(ctx, q, strings.TrimSpace(username)))
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	const q = `SELECT ` + accountColumns + ` FROM account WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, q, uid))
}

func (r *AccountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}
	const q = `
		INSERT INTO account (id, username, password_hash, roles, status, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns
	a, err := scanAccount(r.pool.QueryRow(ctx, q,
		uuid.New(), username, in.PasswordHash, roles, string(types.StatusActive), in.Verified))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return a, nil
}

// CompareAndSetStatus usa UPDATE ... WHERE status = from para que un lock
// automático nunca pise un bloqueo administrativo concurrente.
func (r *AccountRepo) CompareAndSetStatus(ctx context.Context, id string, from, to types.AccountStatus) error {
	if !types.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, from, to)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE account SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		uid, string(from), string(to), time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	// 0 filas: o no existe o el estado ya era otro.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM account WHERE id = $1)`, uid).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrStatusChanged
}

func (r *AccountRepo) MarkVerified(ctx context.Context, id string) error {
	return r.update(ctx, id, `UPDATE account SET verified = TRUE, updated_at = $2 WHERE id = $1`)
}

func (r *AccountRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if hash == "" {
		return repository.ErrInvalidInput
	}
	return r.update(ctx, id, `UPDATE account SET password_hash = $3, updated_at = $2 WHERE id = $1`, hash)
}

func (r *AccountRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *AccountRepo) update(ctx context.Context, id, q string, extra ...any) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrNotFound
	}
	args := append([]any{uid, time.Now().UTC()}, extra...)
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
