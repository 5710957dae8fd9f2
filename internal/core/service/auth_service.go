package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements account management, login and logout.
type AuthService struct {
	repo        ports.AccountRepository
	codec       ports.TokenCodec
	revocations ports.RevocationStore
	roles       ports.RoleResolver
	audit       ports.AuditRecorder
	cost        int
	dummyHash   []byte
	logger      zerolog.Logger
	now         func() time.Time
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Accounts    ports.AccountRepository
	Codec       ports.TokenCodec
	Revocations ports.RevocationStore
	Roles       ports.RoleResolver
	Audit       ports.AuditRecorder
	BcryptCost  int
}

func NewAuthService(deps AuthDeps, logger zerolog.Logger) (*AuthService, error) {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	// Compared against on unknown emails so both login failures cost the same.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, err
	}
	audit := deps.Audit
	if audit == nil {
		audit = nopAudit{}
	}
	return &AuthService{
		repo:        deps.Accounts,
		codec:       deps.Codec,
		revocations: deps.Revocations,
		roles:       deps.Roles,
		audit:       audit,
		cost:        cost,
		dummyHash:   dummy,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Register creates a self-service account. The role is always "user";
// privileged accounts are created by admins.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	in.Role = domain.RoleUser
	return s.create(ctx, in)
}

// CreateAccount creates an account with any valid role.
func (s *AuthService) CreateAccount(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	return s.create(ctx, in)
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	case !validEmail(email):
		return nil, fmt.Errorf("%w: email must be a valid email", domain.ErrValidation)
	case len(in.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	case !domain.ValidRole(in.Role):
		return nil, fmt.Errorf("%w: role must be one of: %s", domain.ErrValidation, strings.Join(domain.Roles, " "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", created.ID).Str("role", created.Role).Msg("account created")
	return created, nil
}

// Login checks the credentials, issues a session token and caches it on the
// account. Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.recordFailure(email, "unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.recordFailure(email, "wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := s.codec.Issue(account.Identity())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.repo.UpdateToken(ctx, account.ID, token, claims.ExpiresAt); err != nil {
		return nil, fmt.Errorf("cache token: %w", err)
	}
	expires := claims.ExpiresAt
	account.Token = token
	account.TokenExpiresAt = &expires

	s.audit.Record(domain.AuthEvent{
		Kind:      domain.AuthEventLogin,
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Timestamp: s.now().UTC(),
	})
	s.logger.Info().Str("account_id", account.ID).Str("role", account.Role).Msg("login")

	return &ports.LoginResult{Account: account, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// Logout revokes the token described by claims until it would have expired
// and clears the token cached on the account.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	if claims == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if err := s.repo.ClearToken(ctx, claims.AccountID); err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("clear cached token: %w", err)
	}
	s.audit.Record(domain.AuthEvent{
		Kind:      domain.AuthEventLogout,
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      claims.Role,
		Timestamp: s.now().UTC(),
	})
	return nil
}

func (s *AuthService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.List(ctx)
}

// ChangeRole updates an account's role and evicts the cached role so the
// change is enforced on the account's next request.
func (s *AuthService) ChangeRole(ctx context.Context, id, role string) (*domain.Account, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be one of: %s", domain.ErrValidation, strings.Join(domain.Roles, " "))
	}
	account, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if err := s.roles.Evict(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("account_id", id).Msg("role cache eviction failed")
	}
	s.logger.Info().Str("account_id", id).Str("role", role).Msg("role changed")
	return account, nil
}

// EnsureBootstrapAdmin creates an admin account for email unless one exists.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, username, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	if username == "" {
		username = "admin"
	}
	_, err = s.create(ctx, ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrAccountExists) {
		return nil
	}
	return err
}

func (s *AuthService) recordFailure(email, reason string) {
	s.audit.Record(domain.AuthEvent{
		Kind:      domain.AuthEventLoginFailed,
		Email:     email,
		Reason:    reason,
		Timestamp: s.now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

type nopAudit struct{}

func (nopAudit) Record(domain.AuthEvent) {}
