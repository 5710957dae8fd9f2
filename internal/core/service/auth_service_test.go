package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
	"github.com/reqforge/requirements-api/internal/infrastructure/token"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	byID     map[string]*domain.Account
	nextID   int
	findErr  error
	tokenErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.nextID++
	c := cloneAccount(a)
	c.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.byID[c.ID] = c
	return cloneAccount(c), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *stubAccountRepo) UpdateRole(_ context.Context, id, role string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Role = role
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) UpdateToken(_ context.Context, id, tok string, expiresAt time.Time) error {
	if r.tokenErr != nil {
		return r.tokenErr
	}
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Token = tok
	a.TokenExpiresAt = &expiresAt
	return nil
}

func (r *stubAccountRepo) ClearToken(_ context.Context, id string) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Token = ""
	a.TokenExpiresAt = nil
	return nil
}

func (r *stubAccountRepo) ClearExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, a := range r.byID {
		if a.TokenExpiresAt != nil && a.TokenExpiresAt.Before(now) {
			a.Token = ""
			a.TokenExpiresAt = nil
			n++
		}
	}
	return n, nil
}

type stubRevocations struct {
	revoked map[string]time.Time
	err     error
}

func (s *stubRevocations) Revoke(_ context.Context, id string, until time.Time) error {
	if s.err != nil {
		return s.err
	}
	if s.revoked == nil {
		s.revoked = make(map[string]time.Time)
	}
	s.revoked[id] = until
	return nil
}

func (s *stubRevocations) Retire(context.Context, string, time.Duration, time.Time) (bool, error) {
	return true, s.err
}

func (s *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := s.revoked[id]
	return ok, s.err
}

type stubRoles struct {
	evicted []string
	err     error
}

func (s *stubRoles) CurrentRole(context.Context, string) (string, error) { return "", nil }

func (s *stubRoles) Evict(_ context.Context, id string) error {
	s.evicted = append(s.evicted, id)
	return s.err
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *recordingAudit) Record(e domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAudit) kinds() []domain.AuthEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type authFixture struct {
	svc   *AuthService
	repo  *stubAccountRepo
	codec *token.Codec
	revs  *stubRevocations
	roles *stubRoles
	audit *recordingAudit
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	codec, err := token.NewCodec(token.Config{Secret: []byte("test-secret"), TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	f := &authFixture{
		repo:  newStubAccountRepo(),
		codec: codec,
		revs:  &stubRevocations{},
		roles: &stubRoles{},
		audit: &recordingAudit{},
	}
	f.svc, err = NewAuthService(AuthDeps{
		Accounts:    f.repo,
		Codec:       codec,
		Revocations: f.revs,
		Roles:       f.roles,
		Audit:       f.audit,
		BcryptCost:  bcrypt.MinCost,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return f
}

func (f *authFixture) mustCreate(t *testing.T, email, password, role string) *domain.Account {
	t.Helper()
	a, err := f.svc.CreateAccount(context.Background(), ports.RegisterInput{
		Username: strings.Split(email, "@")[0],
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", email, err)
	}
	return a
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewAuthService_RejectsBadCost(t *testing.T) {
	if _, err := NewAuthService(AuthDeps{BcryptCost: 99}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for out-of-range cost")
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	account, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "  Alice@Example.com ",
		Password: "pass123",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}
	if account.Role != domain.RoleUser {
		t.Fatalf("public registration must force role user, got %s", account.Role)
	}
	if account.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)
	cases := []struct {
		name string
		in   ports.RegisterInput
	}{
		{"missing username", ports.RegisterInput{Email: "a@x.com", Password: "secret"}},
		{"missing email", ports.RegisterInput{Username: "a", Password: "secret"}},
		{"bad email", ports.RegisterInput{Username: "a", Email: "not-an-email", Password: "secret"}},
		{"short password", ports.RegisterInput{Username: "a", Email: "a@x.com", Password: "123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Register(context.Background(), tc.in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_CreateAccount_RoleValidation(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.CreateAccount(context.Background(), ports.RegisterInput{
		Username: "x", Email: "x@x.com", Password: "secret", Role: "superuser",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}

	a := f.mustCreate(t, "agent@x.com", "secret", domain.RoleAgent)
	if a.Role != domain.RoleAgent {
		t.Fatalf("expected agent role, got %s", a.Role)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	in := ports.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret"}

	if _, err := f.svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in.Email = "BOB@example.com"
	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	created := f.mustCreate(t, "a@x.com", "secret", domain.RoleAgent)

	res, err := f.svc.Login(context.Background(), "A@x.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected token, got empty")
	}
	if res.Account.Role != domain.RoleAgent {
		t.Fatalf("expected role agent, got %s", res.Account.Role)
	}

	claims, err := f.codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.AccountID != created.ID || claims.Role != domain.RoleAgent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(res.ExpiresAt) {
		t.Fatalf("expiry mismatch: %v vs %v", claims.ExpiresAt, res.ExpiresAt)
	}

	stored := f.repo.byID[created.ID]
	if stored.Token != res.Token {
		t.Fatal("expected token cached on the account")
	}
	if got := f.audit.kinds(); len(got) != 1 || got[0] != domain.AuthEventLogin {
		t.Fatalf("expected one login event, got %v", got)
	}
}

func TestAuthService_Login_LastWriteWins(t *testing.T) {
	f := newAuthFixture(t)
	created := f.mustCreate(t, "a@x.com", "secret", domain.RoleUser)

	first, err := f.svc.Login(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := f.svc.Login(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("expected distinct tokens")
	}
	if f.repo.byID[created.ID].Token != second.Token {
		t.Fatal("expected the last login to win")
	}
	if _, err := f.codec.Verify(first.Token); err != nil {
		t.Fatalf("earlier token must stay valid until expiry: %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.mustCreate(t, "dave@example.com", "goodpass", domain.RoleUser)

	if _, err := f.svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := f.audit.kinds(); len(got) != 1 || got[0] != domain.AuthEventLoginFailed {
		t.Fatalf("expected login_failed event, got %v", got)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.findErr = errors.New("mongo down")

	_, err := f.svc.Login(context.Background(), "a@x.com", "secret")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

func TestAuthService_Login_TokenCacheError(t *testing.T) {
	f := newAuthFixture(t)
	f.mustCreate(t, "a@x.com", "secret", domain.RoleUser)
	f.repo.tokenErr = errors.New("write failed")

	if _, err := f.svc.Login(context.Background(), "a@x.com", "secret"); err == nil {
		t.Fatal("expected error when the token cannot be cached")
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	created := f.mustCreate(t, "a@x.com", "secret", domain.RoleUser)
	res, err := f.svc.Login(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.codec.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := f.svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	until, ok := f.revs.revoked[claims.TokenID]
	if !ok {
		t.Fatal("expected token id to be revoked")
	}
	if !until.Equal(claims.ExpiresAt) {
		t.Fatalf("expected revocation until %v, got %v", claims.ExpiresAt, until)
	}
	if f.repo.byID[created.ID].Token != "" {
		t.Fatal("expected cached token to be cleared")
	}
	if err := f.svc.Logout(context.Background(), nil); err != nil {
		t.Fatalf("logout without claims should be a no-op, got %v", err)
	}
}

func TestAuthService_Logout_RevocationFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.revs.err = errors.New("redis down")

	err := f.svc.Logout(context.Background(), &domain.Claims{TokenID: "jti", ExpiresAt: time.Now().Add(time.Hour)})
	if err == nil {
		t.Fatal("expected revocation error to surface")
	}
}

func TestAuthService_ChangeRole(t *testing.T) {
	f := newAuthFixture(t)
	created := f.mustCreate(t, "a@x.com", "secret", domain.RoleUser)

	updated, err := f.svc.ChangeRole(context.Background(), created.ID, domain.RoleAgent)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if updated.Role != domain.RoleAgent {
		t.Fatalf("expected agent, got %s", updated.Role)
	}
	if len(f.roles.evicted) != 1 || f.roles.evicted[0] != created.ID {
		t.Fatalf("expected role cache eviction, got %v", f.roles.evicted)
	}

	if _, err := f.svc.ChangeRole(context.Background(), created.ID, "root"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.ChangeRole(context.Background(), "missing", domain.RoleAdmin); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.svc.EnsureBootstrapAdmin(context.Background(), "Root@x.com", "", "supersecret"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := f.svc.EnsureBootstrapAdmin(context.Background(), "root@x.com", "", "supersecret"); err != nil {
		t.Fatalf("second bootstrap should be a no-op, got %v", err)
	}
	accounts, _ := f.svc.ListAccounts(context.Background())
	if len(accounts) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(accounts))
	}
	if accounts[0].Role != domain.RoleAdmin || accounts[0].Username != "admin" {
		t.Fatalf("unexpected bootstrap account: %+v", accounts[0])
	}

	if err := f.svc.EnsureBootstrapAdmin(context.Background(), "", "", ""); err != nil {
		t.Fatalf("empty bootstrap config should be skipped, got %v", err)
	}
}
