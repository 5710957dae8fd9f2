package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

func TestAuthorize(t *testing.T) {
	user := &domain.Claims{Identity: domain.Identity{Role: domain.RoleUser}}
	agent := &domain.Claims{Identity: domain.Identity{Role: domain.RoleAgent}}

	if err := Authorize(user, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Authorize(agent, domain.RoleAdmin, domain.RoleAgent); err != nil {
		t.Fatalf("expected allowed, got %v", err)
	}
	if err := Authorize(nil, domain.RoleAdmin); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := Authorize(user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("empty allow-list must deny, got %v", err)
	}
	upper := &domain.Claims{Identity: domain.Identity{Role: "Admin"}}
	if err := Authorize(upper, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("role match must be exact, got %v", err)
	}
}

func TestRBAC_Allowed(t *testing.T) {
	f := newGuardFixture(t, 0)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(claimsKey, &domain.Claims{Identity: domain.Identity{Role: domain.RoleAdmin}})

	handler := f.guard.RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbidden(t *testing.T) {
	f := newGuardFixture(t, 0)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/admin/all", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(claimsKey, &domain.Claims{Identity: domain.Identity{AccountID: "acc-7", Role: domain.RoleAgent}})

	err := f.guard.RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(f.audit.events) != 1 {
		t.Fatalf("expected one denied event, got %d", len(f.audit.events))
	}
	ev := f.audit.events[0]
	if ev.Kind != domain.AuthEventDenied || ev.AccountID != "acc-7" || ev.Path != "/api/users/admin/all" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestRBAC_NoClaims(t *testing.T) {
	f := newGuardFixture(t, 0)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := f.guard.RBAC(domain.RoleAdmin)(func(c echo.Context) error { return nil })(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
