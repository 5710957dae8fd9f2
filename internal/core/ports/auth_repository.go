package ports

import (
	"context"
	"time"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// AccountRepository defines the persistence operations of the credential store.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.Account, error)
	// UpdateToken caches the last issued token on the account. Concurrent
	// logins race on this field; the last write wins.
	UpdateToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearToken(ctx context.Context, id string) error
	// ClearExpiredTokens removes cached tokens that expired before now and
	// returns how many accounts were touched.
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
