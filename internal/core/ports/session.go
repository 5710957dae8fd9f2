package ports

import (
	"context"
	"time"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// TokenCodec issues and verifies signed session tokens.
type TokenCodec interface {
	Issue(identity domain.Identity) (string, *domain.Claims, error)
	Verify(token string) (*domain.Claims, error)
}

// RevocationStore remembers tokens that must no longer be accepted.
type RevocationStore interface {
	// Revoke rejects tokenID from now until it expires.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	// Retire rejects tokenID once grace has passed. It reports false when the
	// token is already revoked or retired, so only one caller replaces it.
	Retire(ctx context.Context, tokenID string, grace time.Duration, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SessionTokenWriter caches the last token issued to an account.
type SessionTokenWriter interface {
	UpdateToken(ctx context.Context, accountID, token string, expiresAt time.Time) error
}

// RoleResolver returns an account's current role, possibly from a cache.
type RoleResolver interface {
	CurrentRole(ctx context.Context, accountID string) (string, error)
	Evict(ctx context.Context, accountID string) error
}

// AuditRecorder accepts auth events for asynchronous persistence.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
