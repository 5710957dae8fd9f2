package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// DefaultCookieName is the cookie that carries the session token.
const DefaultCookieName = "token"

// SessionCookies reads, writes and clears the session cookie.
type SessionCookies struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
	Path     string
}

func (s SessionCookies) name() string {
	if s.Name == "" {
		return DefaultCookieName
	}
	return s.Name
}

func (s SessionCookies) path() string {
	if s.Path == "" {
		return "/"
	}
	return s.Path
}

func (s SessionCookies) sameSite() http.SameSite {
	if s.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return s.SameSite
}

// ExtractToken returns the raw token of the request's session cookie.
// A missing or empty cookie fails with domain.ErrUnauthenticated.
func (s SessionCookies) ExtractToken(c echo.Context) (string, error) {
	cookie, err := c.Cookie(s.name())
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", domain.ErrUnauthenticated
	}
	return cookie.Value, nil
}

// Issue builds the cookie that carries token until expiresAt.
func (s SessionCookies) Issue(token string, expiresAt time.Time) *http.Cookie {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	return &http.Cookie{
		Name:     s.name(),
		Value:    token,
		Path:     s.path(),
		Domain:   s.Domain,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.sameSite(),
	}
}

// Clear builds a cookie that makes the browser drop the session cookie.
func (s SessionCookies) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     s.name(),
		Value:    "",
		Path:     s.path(),
		Domain:   s.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.sameSite(),
	}
}

// ParseSameSite maps "lax", "strict" and "none" to their http.SameSite
// value. Anything else yields Lax.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
