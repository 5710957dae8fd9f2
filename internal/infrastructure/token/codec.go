// Package token implements the session token codec: HS256-signed JWTs that
// carry the bearer's identity, role, issue time and expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

const (
	defaultTTL    = 24 * time.Hour
	defaultIssuer = "requirements-api"
	maxLeeway     = 2 * time.Minute
)

// ErrMissingSecret is returned when the codec has no signing secret.
var ErrMissingSecret = errors.New("token: signing secret is not configured")

// Config holds the codec settings. Secret is required.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Codec issues and verifies session tokens. It is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	leeway time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewCodec validates cfg and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, fmt.Errorf("token: leeway must be between 0 and %s", maxLeeway)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		secret: secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		leeway: cfg.Leeway,
		now:    time.Now,
	}, nil
}

// TTL reports the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for identity. The returned claims mirror the token.
func (c *Codec) Issue(identity domain.Identity) (string, *domain.Claims, error) {
	if c == nil || len(c.secret) == 0 {
		return "", nil, ErrMissingSecret
	}
	if identity.AccountID == "" || identity.Role == "" {
		return "", nil, fmt.Errorf("token: identity requires account id and role")
	}

	// JWT timestamps have second precision.
	now := c.clock().Truncate(time.Second)
	exp := now.Add(c.ttl)
	jti := uuid.NewString()

	claims := sessionClaims{
		Username: identity.Username,
		Email:    identity.Email,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   identity.AccountID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("token: sign: %w", err)
	}

	return signed, &domain.Claims{
		Identity:  identity,
		TokenID:   jti,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry of raw. Every
// failure wraps domain.ErrInvalidToken.
func (c *Codec) Verify(raw string) (*domain.Claims, error) {
	if c == nil || len(c.secret) == 0 {
		return nil, ErrMissingSecret
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.clock),
	}
	if c.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(c.leeway))
	}

	var sc sessionClaims
	tkn, err := jwt.NewParser(opts...).ParseWithClaims(raw, &sc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid || sc.Subject == "" || sc.Role == "" || sc.IssuedAt == nil {
		return nil, fmt.Errorf("%w: incomplete claims", domain.ErrInvalidToken)
	}

	return &domain.Claims{
		Identity: domain.Identity{
			AccountID: sc.Subject,
			Username:  sc.Username,
			Email:     sc.Email,
			Role:      sc.Role,
		},
		TokenID:   sc.ID,
		IssuedAt:  sc.IssuedAt.Time.UTC(),
		ExpiresAt: sc.ExpiresAt.Time.UTC(),
	}, nil
}

func (c *Codec) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
