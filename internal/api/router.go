package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/reqforge/requirements-api/docs"
	"github.com/reqforge/requirements-api/internal/api/handler"
	"github.com/reqforge/requirements-api/internal/api/middleware"
	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
	"github.com/reqforge/requirements-api/internal/infrastructure/http/handlers"
)

// Metrics enables request metrics and the /metrics endpoint.
type Metrics struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Logger       zerolog.Logger
	Guard        *middleware.Guard
	Auth         ports.AuthService
	Documents    ports.DocumentService
	AgentOutputs ports.AgentOutputService
	Requirements ports.RequirementService

	CORSOrigins []string
	// BodyLimit caps request bodies, e.g. "20M". Empty disables the limit.
	BodyLimit string
	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handlers.Pinger
	// Metrics is optional; nil leaves /metrics unregistered.
	Metrics *Metrics
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}
	if d.Metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "requirements_http",
			Registerer: d.Metrics.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.Metrics.Gatherer,
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Guard.Cookies())
	documentHandler := handler.NewDocumentHandler(d.Documents)
	agentHandler := handler.NewAgentOutputHandler(d.AgentOutputs)
	requirementHandler := handler.NewRequirementHandler(d.Requirements)

	auth := middleware.Auth(d.Guard)
	adminOnly := d.Guard.RBAC(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Accounts & sessions ---
	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout, middleware.OptionalAuth(d.Guard))
	users.GET("/getUser", authHandler.CurrentUser, auth)
	users.GET("/admin/all", authHandler.ListAccounts, auth, adminOnly)
	users.POST("/admin/users", authHandler.CreateAccount, auth, adminOnly)
	users.PATCH("/admin/users/:id/role", authHandler.ChangeRole, auth, adminOnly)

	// --- Documents ---
	documents := api.Group("/documents", auth)
	documents.POST("", documentHandler.Create)
	documents.GET("", documentHandler.List)
	documents.GET("/:id", documentHandler.Get)
	documents.GET("/:id/file", documentHandler.Download)
	documents.DELETE("/:id", documentHandler.Delete, adminOnly)
	api.POST("/files/upload", documentHandler.Upload, auth)

	// --- Agent outputs ---
	agents := api.Group("/agents", auth)
	agents.POST("", agentHandler.Create, d.Guard.RBAC(domain.RoleAdmin, domain.RoleAgent))
	agents.GET("", agentHandler.List)
	agents.GET("/:id", agentHandler.Get)
	agents.DELETE("/:id", agentHandler.Delete, adminOnly)

	// --- Requirements ---
	requirements := api.Group("/requirements", auth)
	requirements.POST("", requirementHandler.Create)
	requirements.GET("", requirementHandler.List)
	requirements.GET("/:id", requirementHandler.Get)
	requirements.DELETE("/:id", requirementHandler.Delete, adminOnly)

	// --- Health & docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
