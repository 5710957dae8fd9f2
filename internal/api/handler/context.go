package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/api/middleware"
	"github.com/reqforge/requirements-api/internal/core/domain"
)

// ctxClaims returns the claims attached by the Auth middleware. A route
// mounted without it gets domain.ErrUnauthenticated.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.Role == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
