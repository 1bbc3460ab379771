package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/meridian-hr/meridian/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *Tokens
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates credentials and issues a session token. Unknown accounts
// and wrong passwords collapse into the same ErrUnauthenticated so the
// response never reveals whether the email exists. An inactive account is
// only reported as such after the password verified.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil, shared.ErrUnauthenticated
		}
		return "", nil, fmt.Errorf("auth: find user: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, shared.ErrUnauthenticated
	}
	if !user.IsActive {
		return "", nil, shared.ErrAccountInactive
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return token, user, nil
}
