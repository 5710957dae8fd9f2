package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reqforge/requirements-api/internal/api/metrics"
	"github.com/reqforge/requirements-api/internal/api/middleware"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     middleware.SessionCookies
}

func NewAuthHandler(authService ports.AuthService, cookies middleware.SessionCookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Register creates a new account with role "user".
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("account").Inc()
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// Login authenticates an account and sets the session cookie.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.cookies.Issue(res.Token, res.ExpiresAt))
	return c.JSON(http.StatusOK, loginResponse{
		accountResponse: toAccountResponse(res.Account),
		Token:           res.Token,
		ExpiresAt:       res.ExpiresAt,
	})
}

// Logout clears the session cookie and revokes the presented token.
// It succeeds without a session.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.cookies.Clear())
	if claims, ok := middleware.ClaimsFrom(c); ok {
		if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// CurrentUser returns the caller's username and current role.
//
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Success      200  {object}  currentUserResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/users/getUser [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, currentUserResponse{Username: claims.Username, Role: claims.Role})
}

// ListAccounts returns every account.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Success      200  {array}   accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/users/admin/all [get]
func (h *AuthHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.authService.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponses(accounts))
}

// CreateAccount creates an account with any role.
//
// @Summary      Create account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users/admin/users [post]
func (h *AuthHandler) CreateAccount(c echo.Context) error {
	var req createAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.authService.CreateAccount(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	metrics.RecordsCreatedTotal.WithLabelValues("account").Inc()
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// ChangeRole sets the role of an account.
//
// @Summary      Change account role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Account ID"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/admin/users/{id}/role [patch]
func (h *AuthHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.authService.ChangeRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}
