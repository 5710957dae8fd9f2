package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/api/metrics"
	"github.com/reqforge/requirements-api/internal/core/domain"
)

// Authorize succeeds iff the claims' role is an exact member of allowedRoles.
func Authorize(claims *domain.Claims, allowedRoles ...string) error {
	if claims == nil {
		return domain.ErrUnauthenticated
	}
	for _, r := range allowedRoles {
		if claims.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

// RBAC enforces role-based access control on top of Auth.
func (g *Guard) RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := ClaimsFrom(c)
			if err := Authorize(claims, allowedRoles...); err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues(outcome(err)).Inc()
				if claims != nil {
					g.record(c, domain.AuthEventDenied, claims, err.Error())
				}
				return err
			}
			metrics.AuthDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}
