package pg

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginAttemptRepo implementa repository.LoginAttemptRepository.
type LoginAttemptRepo struct{ pool *pgxpool.Pool }

var _ repository.LoginAttemptRepository = (*LoginAttemptRepo)(nil)

func (r *LoginAttemptRepo) Insert(ctx context.Context, a repository.LoginAttempt) error {
	// subject vacío (username inexistente) se guarda como NULL.
	var subject *uuid.UUID
	if id, err := uuid.Parse(a.Subject); err == nil {
		subject = &id
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_attempt (id, subject, username, client_ip, user_agent, success, reason, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, subject, a.Username, a.ClientIP, a.UserAgent, a.Success, a.Reason, a.At)
	return err
}

func (r *LoginAttemptRepo) ListBySubject(ctx context.Context, subject string, limit int) ([]repository.LoginAttempt, error) {
	uid, err := uuid.Parse(subject)
	if err != nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, client_ip, user_agent, success, reason, at
		FROM login_attempt WHERE subject = $1 ORDER BY at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.LoginAttempt, error) {
		a := repository.LoginAttempt{Subject: subject}
		err := row.Scan(&a.ID, &a.Username, &a.ClientIP, &a.UserAgent, &a.Success, &a.Reason, &a.At)
		return a, err
	})
}
