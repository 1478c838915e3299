// Package memory implementa los repositorios en memoria (tests y desarrollo local).
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/google/uuid"
)

// Store guarda cuentas e intentos de login en mapas protegidos por mutex.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]*repository.Account
	byUsername map[string]string // lower(username) -> id
	attempts   []repository.LoginAttempt
	now        func() time.Time
}

func New() *Store {
	return &Store{
		byID:       map[string]*repository.Account{},
		byUsername: map[string]string{},
		now:        time.Now,
	}
}

var (
	_ repository.AccountRepository      = (*Store)(nil)
	_ repository.LoginAttemptRepository = (*Store)(nil)
)

func clone(a *repository.Account) *repository.Account {
	c := *a
	c.Roles = append([]string(nil), a.Roles...)
	return &c
}

func (s *Store) GetByUsername(_ context.Context, username string) (*repository.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *Store) GetByID(_ context.Context, id string) (*repository.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(a), nil
}

func (s *Store) Create(_ context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	key := strings.ToLower(username)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byUsername[key]; dup {
		return nil, repository.ErrConflict
	}
	now := s.now().UTC()
	a := &repository.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: in.PasswordHash,
		Roles:        append([]string{}, in.Roles...),
		Status:       types.StatusActive,
		Verified:     in.Verified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[a.ID] = a
	s.byUsername[key] = a.ID
	return clone(a), nil
}

func (s *Store) CompareAndSetStatus(_ context.Context, id string, from, to types.AccountStatus) error {
	if !types.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.Status != from {
		return repository.ErrStatusChanged
	}
	a.Status = to
	a.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) MarkVerified(_ context.Context, id string) error {
	return s.mutate(id, func(a *repository.Account) { a.Verified = true })
}

func (s *Store) UpdatePasswordHash(_ context.Context, id, hash string) error {
	if hash == "" {
		return repository.ErrInvalidInput
	}
	return s.mutate(id, func(a *repository.Account) { a.PasswordHash = hash })
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) mutate(id string, fn func(*repository.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(a)
	a.UpdatedAt = s.now().UTC()
	return nil
}

// ===== LOGIN ATTEMPTS =====

func (s *Store) Insert(_ context.Context, a repository.LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, a)
	return nil
}

func (s *Store) ListBySubject(_ context.Context, subject string, limit int) ([]repository.LoginAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repository.LoginAttempt
	for _, a := range s.attempts {
		if a.Subject == subject {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
