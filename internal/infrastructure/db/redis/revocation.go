package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedNow marks an entry that applies immediately.
const revokedNow = "0"

// RevocationStore remembers revoked session tokens until they would have
// expired anyway. Entries outlive the token by the codec's leeway, since
// Verify still accepts a token that long after its expiry.
//
// Key format: revoked:<token_id>, value: unix nanos from which the token is
// rejected ("0" for immediately).
type RevocationStore struct {
	client *redis.Client
	leeway time.Duration
	now    func() time.Time
}

// NewRevocationStore creates a RevocationStore. leeway must match the token
// codec's expiry leeway.
func NewRevocationStore(client *redis.Client, leeway time.Duration) *RevocationStore {
	if leeway < 0 {
		leeway = 0
	}
	return &RevocationStore{client: client, leeway: leeway, now: time.Now}
}

// Revoke rejects tokenID from now on. Tokens already past their expiry and
// leeway need no entry.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl, ok := s.ttl(until)
	if !ok {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), revokedNow, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Retire rejects tokenID once grace has passed, letting requests already in
// flight with the old token finish. Only the first caller gets true.
func (s *RevocationStore) Retire(ctx context.Context, tokenID string, grace time.Duration, until time.Time) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	ttl, ok := s.ttl(until)
	if !ok {
		return false, nil
	}
	from := strconv.FormatInt(s.now().Add(grace).UnixNano(), 10)
	set, err := s.client.SetNX(ctx, s.key(tokenID), from, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("retire token: %w", err)
	}
	return set, nil
}

// IsRevoked reports whether tokenID is rejected at this moment.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	v, err := s.client.Get(ctx, s.key(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	from, err := strconv.ParseInt(v, 10, 64)
	if err != nil || from == 0 {
		return true, nil
	}
	return !s.now().Before(time.Unix(0, from)), nil
}

func (s *RevocationStore) ttl(until time.Time) (time.Duration, bool) {
	ttl := until.Add(s.leeway).Sub(s.now())
	return ttl, ttl > 0
}

func (s *RevocationStore) key(tokenID string) string {
	return "revoked:" + tokenID
}
