package ports

import (
	"context"
	"time"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// AuthService defines account and session use cases.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	CreateAccount(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, claims *domain.Claims) error
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	ChangeRole(ctx context.Context, id, role string) (*domain.Account, error)
}
