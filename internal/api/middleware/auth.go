package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/reqforge/requirements-api/internal/api/metrics"
	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

const (
	claimsKey = "claims"

	defaultRenewGrace = 30 * time.Second
)

// Guard authenticates requests from their session cookie.
//
// Revocations and Roles are optional; without them revoked tokens are not
// detected and the role embedded in the token is trusted as is.
type Guard struct {
	codec        ports.TokenCodec
	cookies      SessionCookies
	revocations  ports.RevocationStore
	roles        ports.RoleResolver
	accounts     ports.SessionTokenWriter
	audit        ports.AuditRecorder
	refreshAfter time.Duration
	renewGrace   time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

type GuardConfig struct {
	Codec       ports.TokenCodec
	Cookies     SessionCookies
	Revocations ports.RevocationStore
	Roles       ports.RoleResolver
	// Accounts receives renewed tokens so the account's cached token stays
	// current.
	Accounts ports.SessionTokenWriter
	Audit    ports.AuditRecorder
	// RefreshAfter is the token age after which a fresh token is issued.
	// Zero disables renewal.
	RefreshAfter time.Duration
	// RenewGrace is how long a renewed token keeps working for requests
	// already in flight. Defaults to 30s.
	RenewGrace time.Duration
	Logger     zerolog.Logger
}

func NewGuard(cfg GuardConfig) *Guard {
	grace := cfg.RenewGrace
	if grace <= 0 {
		grace = defaultRenewGrace
	}
	return &Guard{
		codec:        cfg.Codec,
		cookies:      cfg.Cookies,
		revocations:  cfg.Revocations,
		roles:        cfg.Roles,
		accounts:     cfg.Accounts,
		audit:        cfg.Audit,
		refreshAfter: cfg.RefreshAfter,
		renewGrace:   grace,
		log:          cfg.Logger,
		now:          time.Now,
	}
}

// Cookies returns the cookie settings used by the guard.
func (g *Guard) Cookies() SessionCookies { return g.cookies }

// Authenticate resolves the claims of the request's session.
//
//	no cookie                        → domain.ErrUnauthenticated
//	bad token, revoked, gone account → domain.ErrInvalidToken
//	revocation / role store failure  → wrapped store error
func (g *Guard) Authenticate(c echo.Context) (*domain.Claims, error) {
	return g.authenticate(c, true)
}

func (g *Guard) authenticate(c echo.Context, renew bool) (*domain.Claims, error) {
	raw, err := g.cookies.ExtractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := g.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", domain.ErrInvalidToken)
		}
	}

	if g.roles != nil {
		role, err := g.roles.CurrentRole(ctx, claims.AccountID)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, fmt.Errorf("%w: account no longer exists", domain.ErrInvalidToken)
			}
			return nil, err
		}
		claims.Role = role
	}

	if renew && g.refreshAfter > 0 && g.now().Sub(claims.IssuedAt) >= g.refreshAfter {
		claims = g.renew(c, claims)
	}
	return claims, nil
}

// renew issues a fresh token for claims and retires the old one after the
// renewal grace period. When another request already renewed the token, or
// anything fails, the request continues with the current claims.
func (g *Guard) renew(c echo.Context, old *domain.Claims) *domain.Claims {
	raw, fresh, err := g.codec.Issue(old.Identity)
	if err != nil {
		g.log.Warn().Err(err).Str("account_id", old.AccountID).Msg("token renewal failed")
		return old
	}

	ctx := c.Request().Context()
	if g.revocations != nil {
		won, err := g.revocations.Retire(ctx, old.TokenID, g.renewGrace, old.ExpiresAt)
		if err != nil {
			g.log.Warn().Err(err).Str("account_id", old.AccountID).Msg("token renewal skipped")
			return old
		}
		if !won {
			return old
		}
	}

	c.SetCookie(g.cookies.Issue(raw, fresh.ExpiresAt))
	if g.accounts != nil {
		if err := g.accounts.UpdateToken(ctx, fresh.AccountID, raw, fresh.ExpiresAt); err != nil {
			g.log.Warn().Err(err).Str("account_id", fresh.AccountID).Msg("renewed token not cached")
		}
	}
	metrics.TokensRenewedTotal.Inc()
	g.record(c, domain.AuthEventRenewed, fresh, "")
	return fresh
}

// Auth rejects requests without a valid session and attaches the claims to
// both the echo context and the request context.
func Auth(g *Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := g.Authenticate(c)
			if err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues(outcome(err)).Inc()
				if errors.Is(err, domain.ErrInvalidToken) {
					g.record(c, domain.AuthEventDenied, nil, err.Error())
				}
				return err
			}
			metrics.AuthDecisionsTotal.WithLabelValues("authenticated").Inc()
			attach(c, claims)
			return next(c)
		}
	}
}

// OptionalAuth attaches claims when the request carries a valid session and
// lets every request through. It never renews the token, so logout revokes
// the token the client actually holds.
func OptionalAuth(g *Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := g.authenticate(c, false)
			switch {
			case err == nil:
				attach(c, claims)
			case !errors.Is(err, domain.ErrUnauthenticated) && !errors.Is(err, domain.ErrInvalidToken):
				g.log.Warn().Err(err).Str("path", c.Path()).Msg("optional session lookup failed")
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims attached by Auth or OptionalAuth.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func attach(c echo.Context, claims *domain.Claims) {
	c.Set(claimsKey, claims)
	c.SetRequest(c.Request().WithContext(domain.WithClaims(c.Request().Context(), claims)))
}

func (g *Guard) record(c echo.Context, kind domain.AuthEventKind, claims *domain.Claims, reason string) {
	if g.audit == nil {
		return
	}
	event := domain.AuthEvent{
		Kind:      kind,
		Reason:    reason,
		RemoteIP:  c.RealIP(),
		Path:      c.Request().URL.Path,
		Timestamp: g.now().UTC(),
	}
	if claims != nil {
		event.AccountID = claims.AccountID
		event.Email = claims.Email
		event.Role = claims.Role
	}
	g.audit.Record(event)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
