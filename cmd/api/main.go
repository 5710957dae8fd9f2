// @title        Requirements Workspace API
// @version      1.0
// @description  Accounts, documents, agent outputs and requirements behind a cookie-carried session token.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/reqforge/requirements-api/internal/api"
	"github.com/reqforge/requirements-api/internal/api/middleware"
	"github.com/reqforge/requirements-api/internal/core/service"
	mongorepo "github.com/reqforge/requirements-api/internal/infrastructure/db/mongo"
	redisstore "github.com/reqforge/requirements-api/internal/infrastructure/db/redis"
	"github.com/reqforge/requirements-api/internal/infrastructure/http/handlers"
	"github.com/reqforge/requirements-api/internal/infrastructure/queue"
	"github.com/reqforge/requirements-api/internal/infrastructure/storage"
	"github.com/reqforge/requirements-api/internal/infrastructure/token"
	"github.com/reqforge/requirements-api/internal/jobs"
	"github.com/reqforge/requirements-api/internal/pkg/config"
	"github.com/reqforge/requirements-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "requirements-api",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.GopsAddr != "" {
		if err := agent.Listen(agent.Options{Addr: cfg.GopsAddr, ShutdownCleanup: true}); err != nil {
			log.Warn().Err(err).Msg("gops agent not started")
		}
	}

	// --- Storage ---
	mongoClient, db, err := mongorepo.Connect(ctx, mongorepo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}()

	accounts := mongorepo.NewAccountRepository(db)
	documents := mongorepo.NewDocumentRepository(db)
	agentOutputs := mongorepo.NewAgentOutputRepository(db)
	requirements := mongorepo.NewRequirementRepository(db)
	audit := mongorepo.NewAuditRepository(db)

	indexed := map[string]indexer{
		"accounts":      accounts,
		"documents":     documents,
		"agent_outputs": agentOutputs,
		"requirements":  requirements,
		"auth_events":   audit,
	}
	for name, repo := range indexed {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		log.Debug().Str("collection", name).Msg("indexes ensured")
	}

	files, err := storage.NewGridFSStore(db)
	if err != nil {
		return err
	}

	// --- Session core ---
	codec, err := token.NewCodec(token.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
		Leeway: cfg.Auth.Leeway,
	})
	if err != nil {
		return err
	}
	revocations := redisstore.NewRevocationStore(rdb, cfg.Auth.Leeway)
	roles := redisstore.NewRoleCache(rdb, accounts, cfg.Auth.RoleCacheTTL, logger.Component("role_cache"))

	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Auth.AuditWorkers, audit, logger.Component("audit"))
	dispatcher.Start(dispatchCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	// --- Services ---
	authSvc, err := service.NewAuthService(service.AuthDeps{
		Accounts:    accounts,
		Codec:       codec,
		Revocations: revocations,
		Roles:       roles,
		Audit:       dispatcher,
		BcryptCost:  cfg.Auth.BcryptCost,
	}, logger.Component("auth"))
	if err != nil {
		return err
	}
	if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Admin.Email, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return err
	}

	guard := middleware.NewGuard(middleware.GuardConfig{
		Codec: codec,
		Cookies: middleware.SessionCookies{
			Name:     cfg.Cookie.Name,
			Secure:   cfg.SecureCookies(),
			SameSite: middleware.ParseSameSite(cfg.Cookie.SameSite),
			Domain:   cfg.Cookie.Domain,
		},
		Revocations:  revocations,
		Roles:        roles,
		Accounts:     accounts,
		Audit:        dispatcher,
		RefreshAfter: cfg.Auth.RefreshAfter,
		RenewGrace:   cfg.Auth.RenewGrace,
		Logger:       logger.Component("guard"),
	})

	e := api.NewRouter(api.Dependencies{
		Logger:       log,
		Guard:        guard,
		Auth:         authSvc,
		Documents:    service.NewDocumentService(documents, files, logger.Component("documents")),
		AgentOutputs: service.NewAgentOutputService(agentOutputs, logger.Component("agent_outputs")),
		Requirements: service.NewRequirementService(requirements, logger.Component("requirements")),
		CORSOrigins:  cfg.CORSOrigins,
		BodyLimit:    cfg.UploadMaxSize,
		Readiness: map[string]handlers.Pinger{
			"mongodb": handlers.MongoPinger(db),
			"redis":   handlers.RedisPinger(rdb),
		},
		Metrics: &api.Metrics{
			Registerer: prometheus.DefaultRegisterer,
			Gatherer:   prometheus.DefaultGatherer,
		},
	})

	// --- Jobs ---
	scheduler, err := jobs.Schedule(cfg.Jobs.TokenSweepSchedule, jobs.NewTokenSweeper(accounts, logger.Component("jobs")))
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return err
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
