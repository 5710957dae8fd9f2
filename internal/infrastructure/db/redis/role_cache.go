package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

const defaultRoleTTL = time.Minute

// AccountLookup is the slice of the account repository the cache needs.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// RoleCache serves the current role of an account from Redis, falling back
// to the account store on a miss. Redis failures degrade to a store lookup.
// Key format: role:<account_id>
type RoleCache struct {
	client   *redis.Client
	accounts AccountLookup
	ttl      time.Duration
	log      zerolog.Logger
}

// NewRoleCache creates a RoleCache. A non-positive ttl uses one minute.
func NewRoleCache(client *redis.Client, accounts AccountLookup, ttl time.Duration, log zerolog.Logger) *RoleCache {
	if ttl <= 0 {
		ttl = defaultRoleTTL
	}
	return &RoleCache{client: client, accounts: accounts, ttl: ttl, log: log}
}

// CurrentRole returns the role the account holds now. It returns
// domain.ErrAccountNotFound when the account no longer exists.
func (c *RoleCache) CurrentRole(ctx context.Context, accountID string) (string, error) {
	role, err := c.client.Get(ctx, c.key(accountID)).Result()
	switch {
	case err == nil && role != "":
		return role, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("account_id", accountID).Msg("role cache read failed, using account store")
	}

	account, err := c.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}

	if err := c.client.Set(ctx, c.key(accountID), account.Role, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("account_id", accountID).Msg("role cache write failed")
	}
	return account.Role, nil
}

// Evict drops the cached role so the next lookup reads the store.
func (c *RoleCache) Evict(ctx context.Context, accountID string) error {
	if err := c.client.Del(ctx, c.key(accountID)).Err(); err != nil {
		return fmt.Errorf("evict role: %w", err)
	}
	return nil
}

func (c *RoleCache) key(accountID string) string {
	return "role:" + accountID
}
