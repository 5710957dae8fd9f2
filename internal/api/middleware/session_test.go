package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

func TestExtractToken(t *testing.T) {
	cookies := SessionCookies{}
	e := echo.New()

	cases := []struct {
		name    string
		cookie  *http.Cookie
		want    string
		wantErr error
	}{
		{"no cookie", nil, "", domain.ErrUnauthenticated},
		{"empty cookie", &http.Cookie{Name: "token", Value: ""}, "", domain.ErrUnauthenticated},
		{"other cookie", &http.Cookie{Name: "session", Value: "abc"}, "", domain.ErrUnauthenticated},
		{"present", &http.Cookie{Name: "token", Value: "abc.def.ghi"}, "abc.def.ghi", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			got, err := cookies.ExtractToken(c)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtractToken_CustomName(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "rq_session", Value: "xyz"})
	c := e.NewContext(req, httptest.NewRecorder())

	got, err := SessionCookies{Name: "rq_session"}.ExtractToken(c)
	if err != nil || got != "xyz" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}

func TestSessionCookies_Issue(t *testing.T) {
	s := SessionCookies{Secure: true, SameSite: http.SameSiteStrictMode, Domain: "example.com"}
	exp := time.Now().Add(time.Hour)

	c := s.Issue("tok", exp)
	if c.Name != "token" || c.Value != "tok" || c.Path != "/" {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Domain != "example.com" {
		t.Fatalf("unexpected attributes: %+v", c)
	}
	if c.MaxAge < 3590 || c.MaxAge > 3600 {
		t.Fatalf("unexpected max-age %d", c.MaxAge)
	}
}

func TestSessionCookies_Clear(t *testing.T) {
	c := SessionCookies{}.Clear()
	if c.Name != "token" || c.Value != "" || c.MaxAge != -1 || !c.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected Lax default, got %v", c.SameSite)
	}
}

func TestParseSameSite(t *testing.T) {
	cases := map[string]http.SameSite{
		"strict": http.SameSiteStrictMode,
		" None ": http.SameSiteNoneMode,
		"lax":    http.SameSiteLaxMode,
		"":       http.SameSiteLaxMode,
		"bogus":  http.SameSiteLaxMode,
	}
	for in, want := range cases {
		if got := ParseSameSite(in); got != want {
			t.Fatalf("ParseSameSite(%q) = %v, want %v", in, got, want)
		}
	}
}
