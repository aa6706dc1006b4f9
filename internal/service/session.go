package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
)

// Session is the single-slot register for the current user. It is restored
// from the repository at construction and passed to whoever needs it.
type Session struct {
	mu      sync.RWMutex
	repo    repository.UserRepository
	current *domain.User
	log     *zap.Logger
}

func NewSession(ctx context.Context, repo repository.UserRepository, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	u, err := repo.LoadCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &Session{repo: repo, current: u, log: log}, nil
}

// Current returns the logged in user, if any.
func (s *Session) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.User{}, false
	}
	return *s.current, true
}

// Login always succeeds for a known role and a non-blank name. Logging in
// while already logged in replaces the session.
func (s *Session) Login(ctx context.Context, role domain.Role, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.repo.Login(ctx, role, name)
	if err != nil {
		return domain.User{}, err
	}
	if s.current != nil {
		s.log.Info("session replaced", zap.String("previous", s.current.ID), zap.String("user", u.ID))
	} else {
		s.log.Info("logged in", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	}
	s.current = &u
	return u, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Logout(ctx); err != nil {
		return err
	}
	if s.current != nil {
		s.log.Info("logged out", zap.String("user", s.current.ID))
	}
	s.current = nil
	return nil
}

// RequireUser returns the current user or ErrNotAuthenticated.
func (s *Session) RequireUser() (domain.User, error) {
	u, ok := s.Current()
	if !ok {
		return domain.User{}, ErrNotAuthenticated
	}
	return u, nil
}

// RequireRole is RequireUser plus a role check.
func (s *Session) RequireRole(role domain.Role) (domain.User, error) {
	u, err := s.RequireUser()
	if err != nil {
		return u, err
	}
	if u.Role != role {
		return domain.User{}, ErrForbidden
	}
	return u, nil
}
